package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func memoryEnv(t *testing.T) {
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("MQTT_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
}

func TestExportCommand_WritesWorkbook(t *testing.T) {
	memoryEnv(t)
	out := filepath.Join(t.TempDir(), "taxonomy.xlsx")

	rootCmd.SetArgs([]string{"export", "--out", out})
	require.NoError(t, rootCmd.Execute())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Categories")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestSeedCommand_RejectsBrokenCatalog(t *testing.T) {
	memoryEnv(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [{name: Physical}, {name: Physical}]\n"), 0o600))

	rootCmd.SetArgs([]string{"seed", "--catalog", path})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}
