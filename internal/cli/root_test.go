package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shopcore/config"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote/commercetest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "shopcore", cmd.Use)

	for _, name := range []string{"serve", "check"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckCommand(t *testing.T) {
	fake := commercetest.NewServer("")
	defer fake.Close()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "--config", writeEnv(t, "COMMERCE_API_URL="+fake.BaseURL()+"\n")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), ": ok")
}

func TestCheckCommandUnreachable(t *testing.T) {
	fake := commercetest.NewServer("")
	fake.SetHealthDelay(time.Second)
	defer fake.Close()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "-c", writeEnv(t, "COMMERCE_API_URL="+fake.BaseURL()+"\nCOMMERCE_PROBE_TIMEOUT=100ms\n")})

	require.Error(t, cmd.Execute())
	assert.NotContains(t, out.String(), ": ok")
}

func TestApplyReloadSetsLogLevel(t *testing.T) {
	before := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(before) })

	applyReload(&config.Config{LogLevel: "warn"})
	require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	applyReload(&config.Config{LogLevel: "bogus"})
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
