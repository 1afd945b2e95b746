package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Balance.CreditIncome)
	assert.Equal(t, 4, cfg.Balance.StartingHandSize)
	assert.Equal(t, "data/cards.yaml", cfg.Data.CardsPath)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9999"
logging:
  level: debug
  format: console
balance:
  credit_income: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Balance.CreditIncome)
	assert.Equal(t, 256, cfg.Server.MaxMatches, "unset keys keep their defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsNegativeBalance(t *testing.T) {
	path := writeConfig(t, `
balance:
  credit_income: -1
`)
	_, err := Load(path)
	assert.Error(t, err)
}
