package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/taskforge-dev/taskforge/internal/models"
)

// Calendar, when configured, mirrors task schedules into an external
// calendar for assignees. Nil when CALENDAR_API_URL is unset.
var Calendar *CalendarExporter

type CalendarExporter struct {
	Endpoint string
	Tokens   *TokenCache
	Client   *http.Client
}

type calendarEventRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Date        string `json:"date"`
	TaskID      uint   `json:"task_id"`
}

func NewCalendarExporterFromEnv(tokens *TokenCache) *CalendarExporter {
	endpoint := os.Getenv("CALENDAR_API_URL")

	if endpoint == "" {
		return nil
	}

	return &CalendarExporter{
		Endpoint: endpoint,
		Tokens:   tokens,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// EnvTokenRefresher exchanges a user id for a short-lived calendar access
// token at CALENDAR_TOKEN_URL. With the URL unset the refresher always
// errors, which only matters if a calendar exporter is configured anyway.
func EnvTokenRefresher() RefreshFunc {
	tokenURL := os.Getenv("CALENDAR_TOKEN_URL")
	client := &http.Client{Timeout: 10 * time.Second}

	return func(userID uint) (Token, error) {
		if tokenURL == "" {
			return Token{}, fmt.Errorf("CALENDAR_TOKEN_URL is not set")
		}

		body, err := json.Marshal(map[string]uint{"user_id": userID})
		if err != nil {
			return Token{}, err
		}

		resp, err := client.Post(tokenURL, "application/json", bytes.NewBuffer(body))
		if err != nil {
			return Token{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return Token{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
		}

		var parsed struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return Token{}, err
		}

		return Token{
			AccessToken: parsed.AccessToken,
			ExpiresAt:   time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
		}, nil
	}
}

// ExportTaskStart posts the task's start date as a calendar event on behalf
// of the user. Best-effort: callers log and move on.
func (e *CalendarExporter) ExportTaskStart(userID uint, task models.Task) error {
	token, err := e.Tokens.Get(userID)

	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	payload := calendarEventRequest{
		Summary:     fmt.Sprintf("Task starts: %s", task.Name),
		Description: task.Description,
		Date:        task.StartDate.Format("2006-01-02"),
		TaskID:      task.ID,
	}

	body, err := json.Marshal(payload)

	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, e.Endpoint, bytes.NewBuffer(body))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := e.Client.Do(req)

	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			e.Tokens.Invalidate(userID)
		}
		return fmt.Errorf("calendar API returned status %d", resp.StatusCode)
	}

	return nil
}
