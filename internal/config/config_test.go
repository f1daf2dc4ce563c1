package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Valid(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}

func TestValidate_RejectsZeroDepth(t *testing.T) {
	cfg := Defaults()
	cfg.Book.MaxLevelsPerDepth = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsZeroWorkers(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Workers = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Book.MaxLevelsPerDepth)
	assert.Equal(t, Defaults().Server.Address, cfg.Server.Address)
}
