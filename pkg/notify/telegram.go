package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"mercator-hq/templatewatch/pkg/config"
)

// TelegramSink sends messages through the Telegram Bot API.
type TelegramSink struct {
	cfg    config.TelegramConfig
	client *http.Client
	logger *slog.Logger
}

// NewTelegramSink creates a sink for cfg. A nil client gets one with the
// configured timeout.
func NewTelegramSink(cfg config.TelegramConfig, client *http.Client) (*TelegramSink, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = config.DefaultTelegramAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &TelegramSink{
		cfg:    cfg,
		client: client,
		logger: slog.Default().With("component", "notify.telegram"),
	}, nil
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts text to the chat named by destination. An empty destination
// uses the configured chat.
func (s *TelegramSink) Send(ctx context.Context, destination, text string) error {
	if destination == "" {
		destination = s.cfg.ChatID
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                destination,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(s.cfg.APIURL, "/"), s.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// The request URL carries the bot token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = strings.ReplaceAll(urlErr.URL, s.cfg.BotToken, "***")
		}
		return &SendError{Sink: "telegram", Destination: destination, Cause: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var parsed apiResponse
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.OK {
		msg := parsed.Description
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return &SendError{
			Sink:        "telegram",
			Destination: destination,
			StatusCode:  resp.StatusCode,
			Message:     msg,
		}
	}

	s.logger.Debug("message sent", "chat_id", destination, "length", len(text))
	return nil
}
