package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 500, cfg.Download.PageSize)
	assert.Equal(t, 4096, cfg.Download.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.Download.RequestTimeout)
	assert.Equal(t, "CanvasFiles", cfg.Output.BaseDirectory)
	assert.Equal(t, "Files", cfg.Output.PagesFolder)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `canvas:
  domain: canvas.school.edu
  token: secret-token
download:
  page_size: 100
output:
  base_directory: /tmp/courses
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "canvas.school.edu", cfg.Canvas.Domain)
	assert.Equal(t, "secret-token", cfg.Canvas.Token)
	assert.Equal(t, 100, cfg.Download.PageSize)
	assert.Equal(t, "/tmp/courses", cfg.Output.BaseDirectory)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Values not in the file keep their defaults
	assert.Equal(t, 4096, cfg.Download.ChunkSize)
	assert.Equal(t, "Files", cfg.Output.PagesFolder)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CANVASGRAB_DOMAIN", "env.school.edu")
	t.Setenv("CANVASGRAB_TOKEN", "env-token")
	t.Setenv("CANVASGRAB_OUTPUT_DIR", "/data/out")
	t.Setenv("CANVASGRAB_PAGE_SIZE", "250")
	t.Setenv("CANVASGRAB_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env.school.edu", cfg.Canvas.Domain)
	assert.Equal(t, "env-token", cfg.Canvas.Token)
	assert.Equal(t, "/data/out", cfg.Output.BaseDirectory)
	assert.Equal(t, 250, cfg.Download.PageSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"domain":    "flag.school.edu",
		"token":     "flag-token",
		"output":    "FlagFiles",
		"log-level": "error",
	})

	assert.Equal(t, "flag.school.edu", cfg.Canvas.Domain)
	assert.Equal(t, "flag-token", cfg.Canvas.Token)
	assert.Equal(t, "FlagFiles", cfg.Output.BaseDirectory)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"page size zero", func(c *Config) { c.Download.PageSize = 0 }, false},
		{"page size over cap", func(c *Config) { c.Download.PageSize = 501 }, false},
		{"chunk size zero", func(c *Config) { c.Download.ChunkSize = 0 }, false},
		{"empty output dir", func(c *Config) { c.Output.BaseDirectory = "" }, false},
		{"empty pages folder", func(c *Config) { c.Output.PagesFolder = "" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Canvas.Domain = "canvas.school.edu"
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Canvas.Domain, loaded.Canvas.Domain)
	assert.Equal(t, cfg.Download.PageSize, loaded.Download.PageSize)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `canvas:
  domain: file.school.edu
output:
  base_directory: FileDir
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("CANVASGRAB_DOMAIN", "env.school.edu")

	cfg, err := Load(path, map[string]interface{}{"output": "FlagDir"})
	require.NoError(t, err)

	// env beats file, flag beats both
	assert.Equal(t, "env.school.edu", cfg.Canvas.Domain)
	assert.Equal(t, "FlagDir", cfg.Output.BaseDirectory)
}
