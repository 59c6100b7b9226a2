package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func emailConfigFromEnv() EmailConfig {
	port := 587
	if parsed, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && parsed > 0 {
		port = parsed
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SendFraudAlertEmail notifies operators that a reward attempt was hard
// blocked. Delivery is best-effort; callers log and move on.
func SendFraudAlertEmail(to []string, userID string, riskScore int, reasons []string) error {
	config := emailConfigFromEnv()
	if config.Host == "" || len(to) == 0 {
		return fmt.Errorf("smtp not configured or no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] Fraud block on user %s", AppName, userID))

	body := fmt.Sprintf(`
		<h2>Reward attempt blocked</h2>
		<p>User <b>%s</b> was blocked by the fraud detector.</p>
		<p>Risk score: <b>%d</b></p>
		<p>Reasons: %v</p>
		<p>Review the evidence log in the admin dashboard.</p>
	`, userID, riskScore, reasons)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send fraud alert email: %v", err)
	}
	return nil
}
