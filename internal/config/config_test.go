package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "shop:shop@tcp(localhost:3306)/shop?parseTime=true")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, ModeTest, cfg.Mpay24Mode)
	assert.True(t, cfg.TestMode())
	assert.Equal(t, []string{
		"213.164.25.224/27",
		"217.175.200.16/28",
		"213.208.153.58/32",
	}, cfg.IPNSubnets)
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MPAY24_MODE", "staging")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MPAY24_MODE")
}

func TestLoad_InvalidCIDR(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MPAY24_IPN_SUBNETS", "213.164.25.224/27,not-a-cidr")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-cidr")
}

func TestLoad_EmptySubnetsDisableSourceCheck(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MPAY24_IPN_SUBNETS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.IPNSubnets)
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BASE_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BASE_URL")
}
