package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  shutdown_timeout: 10s
database:
  host: "db"
  port: 5432
  user: "patcheck"
  password: "secret"
  db_name: "patents"
redis:
  addr: "cache:6379"
openai:
  api_key: "sk-file"
  timeout: 30s
analysis:
  cache_ttl: 2h
  page_size: 20
cors:
  allowed_origins: ["https://app.example.com"]
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "patents", cfg.Database.DBName)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Analysis.CacheTTL)
	assert.Equal(t, 20, cfg.Analysis.PageSize)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FromFile_DefaultsForUnsetKeys(t *testing.T) {
	path := createTempConfigFile(t, "server:\n  port: 8082\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultEmbeddingModel, cfg.OpenAI.EmbeddingModel)
	assert.Equal(t, DefaultOpenAIMaxRetries, cfg.OpenAI.MaxRetries)
	assert.Equal(t, DefaultTopK, cfg.Analysis.TopK)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "analysis:\n  top_k: -1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("PATCHECK_SERVER_PORT", "9999")
	t.Setenv("PATCHECK_DATABASE_HOST", "db-override")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db-override", cfg.Database.Host)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("PATCHECK_REDIS_ADDR", "redis-env:6379")
	t.Setenv("PATCHECK_ANALYSIS_CACHE_TTL", "15m")
	t.Setenv("PATCHECK_OPENAI_MAX_RETRIES", "0")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "redis-env:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Analysis.CacheTTL)
	assert.Equal(t, 0, cfg.OpenAI.MaxRetries)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	t.Setenv("PATCHECK_SERVER_PORT", "7070")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("PATCHECK_OPENAI_API_KEY", "")
	os.Unsetenv("PATCHECK_OPENAI_API_KEY")
	t.Setenv("OPENAI_API_KEY", "sk-plain")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk-plain", cfg.OpenAI.APIKey)
}

func TestLoad_OpenAIKeyPrefixedWins(t *testing.T) {
	t.Setenv("PATCHECK_OPENAI_API_KEY", "sk-prefixed")
	t.Setenv("OPENAI_API_KEY", "sk-plain")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.OpenAI.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "PATCHECK_DOTENV_PROBE"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o644))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv(key))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestWatch_RequiresPath(t *testing.T) {
	assert.Error(t, Watch("", func(*Config) {}, nil))
}

func TestWatch_ReadsInitialFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NoError(t, Watch(path, func(*Config) {}, nil))
}

func TestMustLoad_Success(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() { MustLoad(path) })
}

func TestMustLoad_Panic(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}
