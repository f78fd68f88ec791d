package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListConversationsBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[{"id":2,"title":"B"},{"id":1,"title":"A"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	items, err := client.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
}

func TestListCampaignsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":9,"name":"Launch","conversation_id":4}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	items, err := client.ListCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].ConversationID)
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(func() string { return "tok-123" }))
	_, err := client.ListConversations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDeleteCampaignSuccess(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.DeleteCampaign(context.Background(), 42))
	assert.Equal(t, "/campaigns/42", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestDeleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.DeleteConversation(context.Background(), 7)
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultServerError, fault.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, fault.Status)
	assert.True(t, fault.SilentlyRetryable())
}

func TestUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ListCampaigns(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestConnectionRefusedClassified(t *testing.T) {
	// Grab a port nothing is listening on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.ListConversations(context.Background())
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultNetworkError, fault.Kind)
	assert.Zero(t, fault.Status)
}

func TestOfflineProbeWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, WithOfflineProbe(func() bool { return true }))
	_, err := client.ListConversations(context.Background())
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultOffline, fault.Kind)
}

func TestFetchCredits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/credits", r.URL.Path)
		_, _ = w.Write([]byte(`{"balance":120,"plan":"starter"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	credits, err := client.FetchCredits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, credits.Balance)
	assert.Equal(t, "starter", credits.Plan)
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":3600}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	token, err := client.Login(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
	assert.False(t, token.Expiry.IsZero())
}

func TestLoginBareToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"xyz"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	token, err := client.Login(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token.AccessToken)
}

func TestLoginBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	assert.True(t, IsUnauthorized(err))
}
