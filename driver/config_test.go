package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astirlang/astir/driver"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := driver.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.DefaultK)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, 0, cfg.KFor("AnyMachine"))
}

func TestLoadConfigParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "astir.toml")
	body := `
output_dir = "gen"
package_name = "parse"
default_k = 2

[machines.Expr]
k = 3
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := driver.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gen", cfg.OutputDir)
	assert.Equal(t, "parse", cfg.PackageName)
	assert.Equal(t, 2, cfg.KFor("Other"))
	assert.Equal(t, 3, cfg.KFor("Expr"))
}
