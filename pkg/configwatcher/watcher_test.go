package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"treasure_hunt_backend/internal/config"

	"github.com/stretchr/testify/require"
)

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("SERVER_MODE", "")
	os.Unsetenv("SERVER_MODE")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "backend:\n  url: https://x\n  api_key: k\nserver:\n  mode: %s\n"
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(body, "debug")), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, dir, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// give the watcher time to register the directory
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(body, "release")), 0o644))

	select {
	case cfg := <-reloaded:
		require.Equal(t, "release", cfg.Server.Mode)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	require.NoError(t, <-done)
}
