package services

import (
	"fmt"
	"log"

	"obit_pipeline_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email via Resend. In test mode the email is logged
// to the console instead of being sent.
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// BuildWinNotification composes the email sent when a contact is marked
// Won. Returns nil when no recipient is configured.
func BuildWinNotification(cfg *config.Config, winnerName, caseName string, closedCount int) *Email {
	if cfg.NotifyWinEmail == "" {
		return nil
	}
	body := fmt.Sprintf(
		"%s was marked Won on case %q. %d other relative(s) were automatically closed.",
		winnerName, caseName, closedCount)
	if cfg.AppURL != "" {
		body += fmt.Sprintf("\n\nOpen the pipeline: %s", cfg.AppURL)
	}
	return &Email{
		To:       []string{cfg.NotifyWinEmail},
		Subject:  fmt.Sprintf("Pipeline win: %s", winnerName),
		TextBody: body,
	}
}

// SendWinNotificationAsync fires the win notification in the background.
// Failures are logged, never surfaced: a transition must not fail because
// an email did.
func SendWinNotificationAsync(cfg *config.Config, winnerName, caseName string, closedCount int) {
	email := BuildWinNotification(cfg, winnerName, caseName, closedCount)
	if email == nil {
		return
	}
	go func() {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending win notification: %v", err)
		}
	}()
}

func logEmailToConsole(email *Email) {
	log.Printf("--- EMAIL (test mode, not sent) ---")
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	if email.TextBody != "" {
		log.Printf("Body: %s", email.TextBody)
	}
	log.Printf("-----------------------------------")
}
