package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testPasetoKey = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.True(t, cfg.Server.IsDevelopment())
	require.Equal(t, "alunetwork", cfg.Database.DBName)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	require.Empty(t, cfg.Admin.Email)
}

func TestLoadRejectsBadPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "too short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TOKEN_DURATION", "3600")
	t.Setenv("TRUSTED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "bootstrap")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.False(t, cfg.Server.IsDevelopment())
	require.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.TrustedOrigins)
	require.Equal(t, "admin@example.com", cfg.Admin.Email)
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5432",
		User:     "app",
		Password: "pw",
		DBName:   "alunetwork",
		SSLMode:  "require",
	}
	require.Equal(t,
		"host=db.internal port=5432 user=app password=pw dbname=alunetwork sslmode=require",
		cfg.ConnectionString(),
	)

	cfg.ChannelBinding = "require"
	require.Contains(t, cfg.ConnectionString(), "channel_binding=require")
}
