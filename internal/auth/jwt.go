package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 168 * time.Hour

var (
	jwtSecret string
	tokenTTL  = defaultTokenTTL
)

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	tokenTTL = defaultTokenTTL
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return fmt.Errorf("JWT_TTL_HOURS must be a positive integer, got %q", raw)
		}
		tokenTTL = time.Duration(hours) * time.Hour
	}

	return nil
}

// GenerateJWT issues an HS256 token carrying the account identity and its
// global role. The role claim is informational; authorization decisions
// reload the account so blocks and role changes take effect immediately.
func GenerateJWT(userID uint, email, globalRole string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     userID,
		"email":       email,
		"global_role": globalRole,
		"exp":         time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	return token, nil
}
