package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func withSendURL(t *testing.T, url string) {
	t.Helper()
	orig := sendURL
	sendURL = url
	t.Cleanup(func() { sendURL = orig })
}

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	if strings.ContainsAny(raw, "+/=") {
		t.Fatalf("raw is not unpadded base64url: %q", raw)
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	return string(data)
}

func TestEncode_Headers(t *testing.T) {
	t.Parallel()

	raw, err := Encode(Message{To: "anna@example.com", Subject: "Follow-up", Body: "<p>Ciao</p>"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	msg := decodeRaw(t, raw)
	for _, want := range []string{
		"To: anna@example.com",
		"Subject: Follow-up",
		"Content-Type: text/html; charset=UTF-8",
		"<p>Ciao</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSender_Send_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg := decodeRaw(t, req.Raw); !strings.Contains(msg, "To: bob@example.com") {
			t.Errorf("raw message = %s", msg)
		}
		_, _ = w.Write([]byte(`{"id":"msg-1","threadId":"th-1"}`))
	}))
	defer srv.Close()
	withSendURL(t, srv.URL)

	id, err := NewSender(slog.Default()).Send(context.Background(), "tok",
		Message{To: "bob@example.com", Subject: "Hi", Body: "body"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "msg-1" {
		t.Errorf("id = %q", id)
	}
}

func TestSender_Send_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid To header"}}`))
	}))
	defer srv.Close()
	withSendURL(t, srv.URL)

	_, err := NewSender(slog.Default()).Send(context.Background(), "tok",
		Message{To: "nobody", Subject: "Hi", Body: "body"})

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("err = %v, want *SendError", err)
	}
	if sendErr.StatusCode != http.StatusBadRequest || sendErr.Message != "Invalid To header" {
		t.Errorf("sendErr = %+v", sendErr)
	}
}
