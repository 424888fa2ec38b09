package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyCompletion is returned when a completion carries no choices.
var ErrEmptyCompletion = errors.New("openai: empty completion")

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ReadImageText asks the vision model to transcribe the text in image.
// An empty mimeType is sent as image/jpeg.
func (c *Client) ReadImageText(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	req := chatRequest{
		Model: c.cfg.VisionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	}

	raw, err := c.complete(ctx, "vision", req)
	if err != nil {
		return "", err
	}

	text, err := MessageText(raw)
	if err != nil {
		return "", fmt.Errorf("openai.ReadImageText: %w", err)
	}

	c.log.DebugContext(ctx, "image text extracted",
		slog.String("mime_type", mimeType),
		slog.Int("chars", len(text)))

	return text, nil
}

// CompleteJSON runs a chat completion constrained to a JSON object and
// returns the raw message content. The content is either a JSON object or a
// JSON string that itself holds one.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	req := chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	return c.complete(ctx, "chat", req)
}

func (c *Client) complete(ctx context.Context, op string, payload chatRequest) (json.RawMessage, error) {
	newReq, err := c.jsonRequest("/chat/completions", payload)
	if err != nil {
		return nil, fmt.Errorf("openai %s: encode request: %w", op, err)
	}

	body, err := c.do(ctx, op, newReq)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai %s: decode response: %w", op, err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.Content) == 0 {
		return nil, fmt.Errorf("openai %s: %w", op, ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}

// MessageText returns message content as plain text. String content is
// unquoted; any other JSON value is returned as its JSON text.
func MessageText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	if !json.Valid(raw) {
		return "", fmt.Errorf("invalid message content")
	}
	return string(raw), nil
}
