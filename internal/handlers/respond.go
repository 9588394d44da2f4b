package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/services"
)

// serviceError translates a typed service error into an HTTP response.
// Anything without a kind is an internal error and is logged, not leaked.
func serviceError(ctx *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.KindForbidden:
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.KindConflict:
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.KindBadRequest:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.KindUnauthorized:
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
