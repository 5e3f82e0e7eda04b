package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
providers:
  fah:
    username: folder
  boinc:
    - name: "Einstein@Home"
      url: https://einsteinathome.org
      user_id: "42"
fetch:
  timeout: 10s
history:
  retention_days: 90
milestones:
  total_credits: [5000000, 1000000]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"FAH_USERNAME", "WCG_MEMBER_NAME", "WCG_VERIFICATION_CODE", "HISTORY_FILE",
		"RETENTION_DAYS", "README_PATH", "LOG_LEVEL", "HTTPS_PROXY", "SQLITE_PATH"} {
		t.Setenv(k, "")
	}
}

func TestLoad_FileAndDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "folder", cfg.Providers.FAH.Username)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 90, cfg.History.RetentionDays)
	assert.Equal(t, "data/stats_history.json", cfg.History.File)
	assert.Equal(t, []int64{1000000, 5000000}, cfg.Milestones["total_credits"], "thresholds are sorted ascending")
	assert.Equal(t, "README.md", cfg.Readme.Path)
	require.Len(t, cfg.Providers.BOINC, 1)
	assert.Equal(t, "einsteinhome", cfg.Providers.BOINC[0].Key)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WCG_MEMBER_NAME", "member")
	t.Setenv("WCG_VERIFICATION_CODE", "code")
	t.Setenv("RETENTION_DAYS", "30")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.WCGConfigured())
	assert.False(t, cfg.FAHConfigured())
	assert.Equal(t, 30, cfg.History.RetentionDays)
	assert.Equal(t, DefaultMilestones, cfg.Milestones["total_credits"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "providers: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrNoProviders)

	cfg.Providers.WCG.MemberName = "member"
	assert.ErrorIs(t, cfg.Validate(), ErrNoProviders, "WCG needs the verification code too")

	cfg.Providers.FAH.Username = "folder"
	assert.NoError(t, cfg.Validate())

	cfg.Providers.BOINC = []BOINCProject{{Key: "fah", URL: "https://x", UserID: "1"}}
	assert.Error(t, cfg.Validate(), "boinc key may not shadow a built-in provider")

	for _, key := range []string{"total", "providers"} {
		cfg.Providers.BOINC = []BOINCProject{{Key: key, URL: "https://x", UserID: "1"}}
		err := cfg.Validate()
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), "would collide")
	}

	cfg.Providers.BOINC = []BOINCProject{{Key: "totalhome", URL: "https://x", UserID: "1"}}
	assert.NoError(t, cfg.Validate())

	cfg.Providers.BOINC = nil
	cfg.Milestones = map[string][]int64{"total_credits": {0}}
	assert.Error(t, cfg.Validate())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, sampleYAML)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	updated := sampleYAML + "\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case c := <-got:
		assert.Equal(t, "debug", c.LogLevel)
	case <-time.After(3 * time.Second):
		t.Fatal("expected reload after write")
	}
}

func TestWatch_SurvivesReplacingSaves(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, sampleYAML)
	dir := filepath.Dir(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 8)
	go func() {
		_ = Watch(ctx, path, func(c *Config) { got <- c })
	}()
	time.Sleep(100 * time.Millisecond)

	replace := func(level string) {
		tmp, err := os.CreateTemp(dir, ".config-*.yaml")
		require.NoError(t, err)
		_, err = tmp.WriteString(sampleYAML + "\nlog_level: " + level + "\n")
		require.NoError(t, err)
		require.NoError(t, tmp.Close())
		require.NoError(t, os.Rename(tmp.Name(), path))
	}
	expect := func(level string) {
		t.Helper()
		select {
		case c := <-got:
			assert.Equal(t, level, c.LogLevel)
		case <-time.After(3 * time.Second):
			t.Fatalf("expected reload with log_level %s", level)
		}
	}

	replace("debug")
	expect("debug")

	replace("warn")
	expect("warn")

	require.NoError(t, os.WriteFile(path, []byte(sampleYAML+"\nlog_level: error\n"), 0o644))
	expect("error")
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, sampleYAML)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, func(c *Config) { got <- c })
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-got:
		t.Fatal("sibling file must not trigger a reload")
	case <-time.After(500 * time.Millisecond):
	}
}
