package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
)

// uploadName is the file name sent with every transcription. The service
// detects the format from content, not from the name.
const uploadName = "audio.mp3"

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe converts audio to text in the configured language.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", uploadName)
	if err != nil {
		return "", fmt.Errorf("openai.Transcribe: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("openai.Transcribe: %w", err)
	}
	if err := mw.WriteField("model", c.cfg.TranscriptionModel); err != nil {
		return "", fmt.Errorf("openai.Transcribe: %w", err)
	}
	if c.cfg.Language != "" {
		if err := mw.WriteField("language", c.cfg.Language); err != nil {
			return "", fmt.Errorf("openai.Transcribe: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("openai.Transcribe: %w", err)
	}

	data := buf.Bytes()
	contentType := mw.FormDataContentType()
	url := c.baseURL + "/audio/transcriptions"

	body, err := c.do(ctx, "transcription", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var resp transcriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("openai.Transcribe: decode response: %w", err)
	}

	c.log.DebugContext(ctx, "audio transcribed",
		slog.Int("bytes", len(audio)),
		slog.Int("chars", len(resp.Text)))

	return resp.Text, nil
}
