package api

import (
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func useTempDataHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestTokenValueEnvOverridesStoredCredential(t *testing.T) {
	useTempDataHome(t)
	require.NoError(t, SaveToken(&oauth2.Token{AccessToken: "stored-token"}))

	t.Setenv("RALLY_API_TOKEN", "env-token")
	assert.Equal(t, "env-token", TokenValue())
}

func TestTokenValueFallsBackToStoredCredential(t *testing.T) {
	useTempDataHome(t)
	t.Setenv("RALLY_API_TOKEN", "")
	require.NoError(t, SaveToken(&oauth2.Token{AccessToken: "stored-token"}))

	assert.Equal(t, "stored-token", TokenValue())
}

func TestTokenValueEmptyWhenNothingStored(t *testing.T) {
	useTempDataHome(t)
	t.Setenv("RALLY_API_TOKEN", "")

	assert.Equal(t, "", TokenValue())
}
