package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/provider"
)

// TwilioSMSSender delivers SMS through the Twilio Messages API.
type TwilioSMSSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTwilioSMSSender builds a Twilio sender with a bounded HTTP timeout.
func NewTwilioSMSSender(cfg config.MessagingConfig, logger *slog.Logger) *TwilioSMSSender {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TwilioSMSSender{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		fromNumber: cfg.TwilioNumber,
		baseURL:    cfg.TwilioAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type twilioResponse struct {
	SID string `json:"sid"`
}

func (s *TwilioSMSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out twilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode sms response: %w", err)
	}
	s.logger.Info("SMS sent", "to", to, "receipt", out.SID)
	return out.SID, nil
}

var _ provider.SMSSender = (*TwilioSMSSender)(nil)
