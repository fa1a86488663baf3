package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

func TestCreateContact_Success(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/contacts", r.URL.Path)
		require.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "c-123", "name": "Jan Kowalski"})
	}))
	defer srv.Close()

	client := NewContactClient(ContactClientConfig{BaseURL: srv.URL, APIKey: "api-key"}, zap.NewNop())

	phone := "+48601234567"
	contact, err := client.CreateContact(context.Background(), "org-1", &model.CreateContactPayload{
		Name:  "Jan Kowalski",
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-123", contact.ID)

	assert.Equal(t, "org-1", received["orgId"])
	assert.Equal(t, "client", received["type"])
	assert.Equal(t, "Jan", received["firstName"])
	assert.Equal(t, "Kowalski", received["lastName"])
	assert.Equal(t, "+48601234567", received["phone"])
}

func TestCreateContact_ErrorPreservesBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "phone number already taken"}`))
	}))
	defer srv.Close()

	client := NewContactClient(ContactClientConfig{BaseURL: srv.URL}, zap.NewNop())

	_, err := client.CreateContact(context.Background(), "org-1", &model.CreateContactPayload{Name: "Jan"})
	require.Error(t, err)

	var apiErr *ContactAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, `{"error": "phone number already taken"}`, apiErr.Body)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Jan Kowalski")
	assert.Equal(t, "Jan", first)
	assert.Equal(t, "Kowalski", last)

	first, last = splitName("Jan Maria Kowalski")
	assert.Equal(t, "Jan", first)
	assert.Equal(t, "Maria Kowalski", last)

	first, last = splitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)

	first, last = splitName("  ")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
