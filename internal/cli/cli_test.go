package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/greencart/internal/remote/remotetest"
	"github.com/angelmondragon/greencart/pkg/config"
	"github.com/angelmondragon/greencart/pkg/logger"
)

const cliUser = "cli-user"

type cliState struct {
	Status string `json:"status"`
	Data   struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		TotalItems    int     `json:"totalItemCount"`
		TotalPrice    float64 `json:"totalPrice"`
		GreenDelivery bool    `json:"greenDelivery"`
		LastError     string  `json:"lastError"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupEnv(t *testing.T) *remotetest.Server {
	t.Helper()
	fake := remotetest.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv(config.EnvStorageDriver, "file")
	t.Setenv(config.EnvStoragePath, filepath.Join(t.TempDir(), "cart.json"))
	t.Setenv(config.EnvSyncBaseURL, srv.URL)
	t.Setenv(config.EnvSyncUserID, cliUser)
	t.Setenv(config.EnvLogLevel, "error")
	return fake
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeState(t *testing.T, raw string) cliState {
	t.Helper()
	var got cliState
	require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
	return got
}

func TestAddPropagatesAndStateReflectsService(t *testing.T) {
	fake := setupEnv(t)

	_, err := runCLI(t, "add", "mock-2", "--qty", "2", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Quantity(cliUser, "mock-2"))

	out, err := runCLI(t, "state", "--format", "json")
	require.NoError(t, err)
	got := decodeState(t, out)
	assert.Equal(t, "ok", got.Status)
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, "mock-2", got.Data.Items[0].ProductID)
	assert.Equal(t, 2, got.Data.TotalItems)
	assert.InDelta(t, 59.98, got.Data.TotalPrice, 1e-9)
}

func TestOfflineAddIsSavedLocally(t *testing.T) {
	fake := setupEnv(t)

	_, err := runCLI(t, "add", "mock-3", "--price", "24.99", "--offline", "--format", "json")
	require.NoError(t, err)
	assert.Zero(t, fake.TotalCalls())

	out, err := runCLI(t, "state", "--offline", "--format", "json")
	require.NoError(t, err)
	got := decodeState(t, out)
	require.Len(t, got.Data.Items, 1)
	assert.InDelta(t, 24.99, got.Data.TotalPrice, 1e-9)
	assert.NotEmpty(t, got.Data.LastError)
}

func TestSetQuantityStaysLocal(t *testing.T) {
	fake := setupEnv(t)

	_, err := runCLI(t, "add", "mock-4", "--offline")
	require.NoError(t, err)
	out, err := runCLI(t, "set-qty", "mock-4", "5", "--offline", "--format", "json")
	require.NoError(t, err)

	got := decodeState(t, out)
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, 5, got.Data.Items[0].Quantity)
	assert.Zero(t, fake.Quantity(cliUser, "mock-4"))
}

func TestToggleGreenFlipsOption(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "toggle-green", "--offline", "--format", "json")
	require.NoError(t, err)
	assert.False(t, decodeState(t, out).Data.GreenDelivery)
}

func TestCheckoutOfflineIsRefused(t *testing.T) {
	fake := setupEnv(t)

	_, err := runCLI(t, "add", "mock-1", "--offline")
	require.NoError(t, err)

	out, err := runCLI(t, "checkout", "--offline", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	got := decodeState(t, out)
	assert.Equal(t, "error", got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "BACKEND_UNAVAILABLE", got.Error.Code)
	assert.Zero(t, fake.TotalCalls())
}

func TestCheckoutPlacesOrder(t *testing.T) {
	fake := setupEnv(t)

	_, err := runCLI(t, "add", "mock-2")
	require.NoError(t, err)

	out, err := runCLI(t, "checkout", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"orderId"`)
	assert.Equal(t, 1, fake.Purchases("mock-2"))

	out, err = runCLI(t, "state", "--offline", "--format", "json")
	require.NoError(t, err)
	assert.Empty(t, decodeState(t, out).Data.Items)
}

func TestSyncFailsWhenServiceUnreachable(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvSyncBaseURL, "http://127.0.0.1:1")

	_, err := runCLI(t, "sync")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestArgumentErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "bad format", args: []string{"state", "--format", "yaml"}},
		{name: "zero quantity", args: []string{"set-qty", "mock-1", "0"}},
		{name: "non numeric quantity", args: []string{"set-qty", "mock-1", "two"}},
		{name: "blank product", args: []string{"remove", "  "}},
		{name: "quantity above cap", args: []string{"set-qty", "mock-1", "10000"}},
		{name: "add above cap", args: []string{"add", "mock-1", "--qty", "10000"}},
		{name: "nan price", args: []string{"add", "mock-1", "--price", "NaN"}},
		{name: "infinite footprint", args: []string{"add", "mock-1", "--footprint", "+Inf"}},
		{name: "negative price", args: []string{"add", "mock-1", "--price=-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestInvalidConfigIsCommandError(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvStorageDriver, "floppy")

	_, err := runCLI(t, "state")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", assert.AnError)))
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	opts := &RootOptions{
		Format: formatText,
		cfg: &config.Config{
			Sync: config.SyncConfig{
				UserID:         cliUser,
				RequestTimeout: time.Second,
				RetryCooldown:  time.Minute,
			},
			Storage: config.StorageConfig{Driver: "memory", Key: "greenCart"},
		},
		logg: logger.Nop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, opts, &serveOptions{addr: "127.0.0.1:0", fakeBackend: true})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
