package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf, err := loadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7000/catalog", conf.URL)
	assert.Equal(t, "admin_user", conf.User)
	assert.Equal(t, "X-User", conf.UserHeader)
	assert.Equal(t, 10*time.Second, conf.Timeout)
	assert.Empty(t, conf.EventSinkSystem)
}

func TestLoadConfig_HomeFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeHomeConfig(t, home, "url: http://catalog:7000/catalog\nuser: file_user\ntimeout: 3s\nkafka_brokers: [a:9092, b:9092]\n")
	t.Setenv("CATALOG_USER", "env_user")

	conf, err := loadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://catalog:7000/catalog", conf.URL)
	assert.Equal(t, "env_user", conf.User)
	assert.Equal(t, 3*time.Second, conf.Timeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, conf.KafkaBrokers)
}

func TestLoadConfig_FlagsWin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CATALOG_USER", "env_user")

	cmd := NewRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--user", "flag_user", "--timeout", "250ms"}))

	conf, err := loadConfig("", cmd)
	require.NoError(t, err)
	assert.Equal(t, "flag_user", conf.User)
	assert.Equal(t, 250*time.Millisecond, conf.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config file")

	t.Setenv("CATALOG_TIMEOUT", "-1s")
	_, err = loadConfig("", nil)
	assert.ErrorContains(t, err, "timeout cannot be negative")

	t.Setenv("CATALOG_TIMEOUT", "")
	t.Setenv("CATALOG_EVENT_SINK", "kafka")
	_, err = loadConfig("", nil)
	assert.ErrorContains(t, err, "kafka: brokers are required")
}

func writeHomeConfig(t *testing.T, home, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".catalogflow.yaml"), []byte(content), 0o600))
}
