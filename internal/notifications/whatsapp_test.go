package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xourcebase/backend/config"
)

func TestSendChat(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"sent": "true", "id": 101})
	}))
	defer server.Close()

	client := NewWhatsAppClient(config.UltraMsgConfig{
		InstanceID: "instance42",
		Token:      "secret-token",
		BaseURL:    server.URL,
	})

	err := client.SendChat(context.Background(), "919876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/instance42/messages/chat", gotPath)
	assert.Equal(t, "919876543210", gotPayload["to"])
	assert.Equal(t, "hello", gotPayload["body"])
	assert.Equal(t, "secret-token", gotPayload["token"])
}

func TestSendChatRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "invalid token"})
	}))
	defer server.Close()

	client := NewWhatsAppClient(config.UltraMsgConfig{
		InstanceID: "instance42",
		Token:      "bad-token",
		BaseURL:    server.URL,
	})

	err := client.SendChat(context.Background(), "919876543210", "hello")
	assert.Error(t, err)
}

func TestSendChatNotConfigured(t *testing.T) {
	client := NewWhatsAppClient(config.UltraMsgConfig{})
	err := client.SendChat(context.Background(), "919876543210", "hello")
	assert.ErrorIs(t, err, ErrWhatsAppNotConfigured)
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage("Asha Rao", testWorkshop())
	assert.Contains(t, msg, "Congratulations Asha Rao")
	assert.Contains(t, msg, "Career Accelerator Workshop")
	assert.Contains(t, msg, "Saturday, 20th December 2025")
	assert.Contains(t, msg, "Zoom")
}
