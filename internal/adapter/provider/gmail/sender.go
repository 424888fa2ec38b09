// Package gmail sends mail through the Gmail REST API on behalf of a user.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gopkg.in/gomail.v2"
)

// Made variable for testing purposes
var sendURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// Message is an outbound HTML email. The sender address is the mailbox owner.
type Message struct {
	To      string
	Subject string
	Body    string
}

// SendError is a non-success response from the Gmail API.
type SendError struct {
	StatusCode int
	Message    string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("gmail send: status %d: %s", e.StatusCode, e.Message)
}

// Sender posts raw RFC 2822 messages to the Gmail API.
type Sender struct {
	httpClient *http.Client
	log        *slog.Logger
}

// NewSender creates a Gmail sender.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.With("adapter", "gmail"),
	}
}

type sendRequest struct {
	Raw string `json:"raw"`
}

type sendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send delivers msg using accessToken and returns the Gmail message id.
func (s *Sender) Send(ctx context.Context, accessToken string, msg Message) (string, error) {
	raw, err := Encode(msg)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(sendRequest{Raw: raw})
	if err != nil {
		return "", fmt.Errorf("gmail.Send: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gmail.Send: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gmail.Send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gmail.Send: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := http.StatusText(resp.StatusCode)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		s.log.WarnContext(ctx, "gmail send rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("error", message))
		return "", &SendError{StatusCode: resp.StatusCode, Message: message}
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("gmail.Send: decode response: %w", err)
	}

	s.log.InfoContext(ctx, "gmail message sent", slog.String("message_id", sr.ID))
	return sr.ID, nil
}

// Encode renders msg as an RFC 2822 message in unpadded base64url, the form
// the Gmail API expects in the raw field.
func Encode(msg Message) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("gmail.Encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}
