package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/infrastructure/config"
)

var ErrNoRecipients = errors.New("email has no recipients")

// Message is one transactional email.
type Message struct {
	To      []string `json:"to" binding:"required,min=1,dive,email"`
	Subject string   `json:"subject" binding:"required,max=200"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Sender dispatches transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type apiSender struct {
	httpClient *resty.Client
	from       string
	logger     *zap.Logger
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// NewAPISender returns a Sender for the email provider's HTTP API, authenticated by API key.
func NewAPISender(cfg *config.Config, logger *zap.Logger) Sender {
	client := resty.New().
		SetBaseURL(cfg.EmailBaseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetAuthToken(cfg.EmailAPIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &apiSender{
		httpClient: client,
		from:       cfg.EmailFrom,
		logger:     logger,
	}
}

// Send posts msg and returns the provider's message id.
func (s *apiSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}

	var result sendResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    s.from,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Text:    msg.Text,
		}).
		SetResult(&result).
		Post("/emails")
	if err != nil {
		s.logger.Error("email API call failed", zap.Error(err), zap.String("subject", msg.Subject))
		return "", fmt.Errorf("failed to call email API: %w", err)
	}
	if resp.IsError() {
		s.logger.Error("email API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()))
		return "", fmt.Errorf("email API error: status %d", resp.StatusCode())
	}

	s.logger.Info("email sent",
		zap.String("message_id", result.ID),
		zap.Int("recipients", len(msg.To)))
	return result.ID, nil
}
