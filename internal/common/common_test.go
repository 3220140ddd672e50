package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "MAX_UPLOAD_MB", "STORAGE_BACKEND", "LLM_PROVIDER", "MASK_BAND_HEIGHT", "REUSE_BY_HASH", "LOG_FORMAT", "OCR_TIMEOUT", "PREPROCESS_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, ":5000", cfg.Server.HTTPAddr)
	assert.Equal(t, 16, cfg.Server.MaxUploadMB)
	assert.Equal(t, 50.0, cfg.Preprocess.BandHeight)
	assert.True(t, cfg.Preprocess.Enabled)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.False(t, cfg.ReuseByHash)
	assert.Equal(t, 60*time.Second, cfg.OCR.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("MASK_BAND_HEIGHT", "36")
	t.Setenv("OCR_TIMEOUT", "5s")
	t.Setenv("REUSE_BY_HASH", "true")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "k", cfg.LLM.APIKey)
	assert.Equal(t, 36.0, cfg.Preprocess.BandHeight)
	assert.Equal(t, 5*time.Second, cfg.OCR.Timeout)
	assert.True(t, cfg.ReuseByHash)
	assert.Equal(t, 16, cfg.Server.MaxUploadMB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{HTTPAddr: ":5000", MaxUploadMB: 16},
			Preprocess: PreprocessConfig{BandHeight: 50},
			Storage:    StorageConfig{Backend: "local"},
			Log:        LogConfig{Format: "json"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing addr", func(c *Config) { c.Server.HTTPAddr = " " }, "HTTP_ADDR"},
		{"zero upload", func(c *Config) { c.Server.MaxUploadMB = 0 }, "MAX_UPLOAD_MB"},
		{"negative band", func(c *Config) { c.Preprocess.BandHeight = -1 }, "MASK_BAND_HEIGHT"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "ftp" }, "STORAGE_BACKEND"},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = "s3" }, "S3_BUCKET"},
		{"llm without key", func(c *Config) { c.LLM.Provider = "openai" }, "LLM API key"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			var ae *AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, CodeConfig, ae.Code)
			assert.Contains(t, ae.Message, tt.field)
		})
	}
}

func TestRejections(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{Reject(ErrMissingFile, "No file part"), "No file part"},
		{Reject(ErrEmptyFilename, "No selected file"), "No selected file"},
		{Reject(ErrUnsupportedFormat, "Invalid file"), "Invalid file"},
		{NewAppError(CodeInvalidInput, "file too large", ErrInvalidInput), "file too large"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.True(t, IsClientError(tt.err))
			assert.Equal(t, tt.message, RejectionMessage(tt.err))
		})
	}
	assert.False(t, IsClientError(ErrReformatterMissing))
	assert.False(t, IsClientError(ErrNotFound))
}

func TestAppErrorFormatting(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError(CodeInternal, "archive failed", cause)
	assert.Equal(t, "INTERNAL: archive failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "CONFIG_ERROR: bad", NewAppError(CodeConfig, "bad", nil).Error())
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, ContentHashFromContext(ctx))

	ctx = WithContentHash(WithRequestID(ctx, "rid"), "abc")
	assert.Equal(t, "rid", RequestIDFromContext(ctx))
	assert.Equal(t, "abc", ContentHashFromContext(ctx))

	tctx, cancel := WithTimeout(ctx, 0)
	defer cancel()
	_, hasDeadline := tctx.Deadline()
	assert.False(t, hasDeadline)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("processor.extract.ok", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"processor.extract.ok"`)

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}
