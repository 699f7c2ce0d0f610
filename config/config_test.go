package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	t.Chdir(dir)
}

func TestNew_AppliesDefaults(t *testing.T) {
	writeConfig(t, `
env:
  serviceName: warden
storage:
  driver: memory
token:
  secret: "`+testSecret+`"
`)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "warden", cfg.Env.ServiceName)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Token.TTL)
	assert.Equal(t, "warden", cfg.Token.Issuer)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
	assert.Equal(t, 2, cfg.Policy.DisplayNameMinLength)
	assert.Equal(t, 100, cfg.Policy.DisplayNameMaxLength)
	assert.Equal(t, 6, cfg.Policy.PasswordMinLength)
	assert.Equal(t, 72, cfg.Policy.PasswordMaxLength)
	assert.Equal(t, PubSubProviderNoop, cfg.PubSub.Provider)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
}

func TestNew_EnvOverridesNestedKeys(t *testing.T) {
	writeConfig(t, `
storage:
  driver: memory
token:
  secret: ""
  ttl: 1h
auth:
  bcryptCost: 10
`)
	t.Setenv("TOKEN_SECRET", testSecret)
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("AUTH_BCRYPTCOST", "4")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, testSecret, cfg.Token.Secret)
	assert.Equal(t, 15*time.Minute, cfg.Token.TTL)
	assert.Equal(t, bcrypt.MinCost, cfg.Auth.BcryptCost)
}

func TestNew_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := New()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Storage.Driver = StorageDriverMemory
		cfg.Token.Secret = testSecret
		cfg.applyDefaults()

		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.Token.Secret = "" }, wantErr: "token.secret"},
		{name: "short secret", mutate: func(c *Config) { c.Token.Secret = "too-short" }, wantErr: "token.secret"},
		{name: "negative ttl", mutate: func(c *Config) { c.Token.TTL = -time.Minute }, wantErr: "token.ttl"},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 1 }, wantErr: "bcryptCost"},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 40 }, wantErr: "bcryptCost"},
		{name: "password max above bcrypt limit", mutate: func(c *Config) { c.Policy.PasswordMaxLength = 100 }, wantErr: "passwordMaxLength"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: "storage.driver"},
		{name: "postgres without section", mutate: func(c *Config) { c.Storage.Driver = StorageDriverPostgres }, wantErr: "postgres section"},
		{name: "unknown pubsub provider", mutate: func(c *Config) { c.PubSub.Provider = "kafka" }, wantErr: "pubsub.provider"},
		{name: "audit sink without port", mutate: func(c *Config) { c.AuditSink.Enabled = true }, wantErr: "auditSink.port"},
		{name: "audit sink sharing http port", mutate: func(c *Config) {
			c.HTTP.Port = 8080
			c.AuditSink = AuditSinkConfig{Enabled: true, Port: 8080}
		}, wantErr: "auditSink.port"},
		{name: "audit sink on own port", mutate: func(c *Config) {
			c.HTTP.Port = 8080
			c.AuditSink = AuditSinkConfig{Enabled: true, Port: 8081}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildReplicasFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_REPLICAS_0_HOST", "replica-0")
	t.Setenv("POSTGRES_REPLICAS_0_PORT", "5433")
	t.Setenv("POSTGRES_REPLICAS_0_USERNAME", "reader")
	t.Setenv("POSTGRES_REPLICAS_1_HOST", "replica-1")

	replicas := buildReplicasFromEnv()

	require.Len(t, replicas, 1)
	assert.Equal(t, "replica-0", replicas[0].Host)
	assert.Equal(t, "5433", replicas[0].Port)
	assert.Equal(t, "reader", replicas[0].UserName)
}
