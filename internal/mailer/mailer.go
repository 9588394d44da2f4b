package mailer

import (
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Send delivers a plain-text mail through the SMTP server configured via
// SMTP_HOST/SMTP_PORT/SMTP_USERNAME/SMTP_PASSWORD/MAIL_FROM. A missing
// SMTP_HOST disables mail entirely.
func Send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")

	if host == "" {
		return nil
	}

	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}

	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}

	message := gomail.NewMessage()
	message.SetHeader("From", from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	dialer := gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))

	return dialer.DialAndSend(message)
}
