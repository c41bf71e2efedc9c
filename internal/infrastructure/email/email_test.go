package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"noticeboard-http-service/internal/infrastructure/config"
)

func TestSend(t *testing.T) {
	var gotAuth string
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/emails", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	sender := NewAPISender(&config.Config{
		EmailAPIKey:  "re_key",
		EmailFrom:    "notices@example.com",
		EmailBaseURL: srv.URL,
	}, zap.NewNop())

	id, err := sender.Send(context.Background(), Message{
		To:      []string{"resident@example.com"},
		Subject: "New notice: Lift maintenance",
		Text:    "A new notice was published.",
	})
	require.NoError(t, err)

	assert.Equal(t, "msg_123", id)
	assert.Equal(t, "Bearer re_key", gotAuth)
	assert.Equal(t, "notices@example.com", got.From)
	assert.Equal(t, []string{"resident@example.com"}, got.To)
}

func TestSend_NoRecipients(t *testing.T) {
	sender := NewAPISender(&config.Config{EmailBaseURL: "http://127.0.0.1:1"}, zap.NewNop())

	_, err := sender.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSend_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	sender := NewAPISender(&config.Config{EmailBaseURL: srv.URL, EmailFrom: "a@b.c"}, zap.NewNop())
	_, err := sender.Send(context.Background(), Message{To: []string{"r@example.com"}, Subject: "x"})
	assert.ErrorContains(t, err, "status 422")
}
