// Package provider implements the outbound messaging providers declared in
// pkg/provider.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/provider"
)

// ResendEmailSender delivers email through the Resend HTTP API.
type ResendEmailSender struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewResendEmailSender builds a Resend sender with a bounded HTTP timeout so
// one slow delivery cannot stall a whole dispatch cycle.
func NewResendEmailSender(cfg config.MessagingConfig, logger *slog.Logger) *ResendEmailSender {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ResendEmailSender{
		apiKey:  cfg.ResendAPIKey,
		baseURL: cfg.ResendAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (s *ResendEmailSender) SendEmail(ctx context.Context, msg provider.EmailMessage) (string, error) {
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", fmt.Errorf("encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("resend returned status %d: %s", resp.StatusCode, string(body))
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode email response: %w", err)
	}
	s.logger.Info("Email sent", "to", msg.To, "receipt", out.ID)
	return out.ID, nil
}

var _ provider.EmailSender = (*ResendEmailSender)(nil)
