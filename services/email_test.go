package services

import (
	"testing"

	"obit_pipeline_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWinNotification(t *testing.T) {
	cfg := &config.Config{NotifyWinEmail: "team@example.org"}

	email := BuildWinNotification(cfg, "Alice Doe", "John Doe", 2)
	require.NotNil(t, email)
	assert.Equal(t, []string{"team@example.org"}, email.To)
	assert.Contains(t, email.Subject, "Alice Doe")
	assert.Contains(t, email.TextBody, `case "John Doe"`)
	assert.Contains(t, email.TextBody, "2 other relative(s)")
	assert.NotContains(t, email.TextBody, "Open the pipeline")
}

func TestBuildWinNotification_IncludesAppLink(t *testing.T) {
	cfg := &config.Config{
		NotifyWinEmail: "team@example.org",
		AppURL:         "https://pipeline.example.org",
	}

	email := BuildWinNotification(cfg, "Alice Doe", "John Doe", 1)
	require.NotNil(t, email)
	assert.Contains(t, email.TextBody, "Open the pipeline: https://pipeline.example.org")
}

func TestBuildWinNotification_NoRecipientConfigured(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, BuildWinNotification(cfg, "Alice", "John Doe", 0))
}

func TestSendEmail_TestModeDoesNotRequireAPIKey(t *testing.T) {
	cfg := &config.Config{EmailTestMode: true}

	err := SendEmail(cfg, &Email{
		To:       []string{"team@example.org"},
		Subject:  "Pipeline win",
		TextBody: "logged, not sent",
	})
	assert.NoError(t, err)
}

func TestSendEmail_MissingAPIKey(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false}

	err := SendEmail(cfg, &Email{To: []string{"team@example.org"}, Subject: "x", TextBody: "y"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY")
}
