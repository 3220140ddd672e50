package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	OCR        OCRConfig
	Preprocess PreprocessConfig
	Fields     FieldsConfig
	Storage    StorageConfig
	Notify     NotifyConfig
	LLM        LLMConfig
	Log        LogConfig

	// ReuseByHash returns the stored record for a byte-identical upload.
	ReuseByHash bool
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string // postgres://... uses pgx; anything else is a sqlite path
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr    string
	GRPCAddr    string
	MaxUploadMB int
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	Pdfimages     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	OEM           int
	Timeout       time.Duration // per image
	WorkDir       string        // per-request scratch space; "" -> os.TempDir()
}

// PreprocessConfig controls header/footer masking of PDFs.
type PreprocessConfig struct {
	Enabled     bool
	Ghostscript string
	BandHeight  float64
}

// FieldsConfig controls field extraction.
type FieldsConfig struct {
	Concurrent bool
}

// StorageConfig selects where uploads are archived.
type StorageConfig struct {
	Backend   string // "local" | "s3" | "none"
	Dir       string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	KeyPrefix string
	PathStyle bool
}

// NotifyConfig holds the optional AMQP publisher settings.
type NotifyConfig struct {
	AMQPURL    string
	Exchange   string
	RoutingKey string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string // "openai" | "gemini" | ""
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | text | pretty
}

// LoadConfig loads .env (when present) and then configuration from environment variables
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config.dotenv.load_failed", "error", err)
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ""))
	llmCfg := LLMConfig{
		Provider:    provider,
		Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		APIKey:      getEnv("OPENAI_API_KEY", ""),
		BaseURL:     getEnv("OPENAI_BASE_URL", ""),
		Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
		Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
	}
	if provider == "gemini" {
		llmCfg.Model = getEnv("GEMINI_MODEL", "gemini-2.5-flash")
		llmCfg.APIKey = getEnv("GEMINI_API_KEY", "")
		llmCfg.Temperature = getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0)
		llmCfg.Timeout = getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second)
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:    getEnv("HTTP_ADDR", ":5000"),
			GRPCAddr:    getEnv("GRPC_ADDR", ":5001"),
			MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 16),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Pdfimages:     getEnv("PDFIMAGES_BIN", "pdfimages"),
			TesseractLang: getEnv("TESSERACT_LANG", constants.DefaultTesseractLang),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("OCR_PSM", 0),
			OEM:           getEnvAsInt("OCR_OEM", 0),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			WorkDir:       getEnv("WORK_DIR", ""),
		},
		Preprocess: PreprocessConfig{
			Enabled:     getEnvAsBool("PREPROCESS_ENABLED", true),
			Ghostscript: getEnv("GHOSTSCRIPT_BIN", "gs"),
			BandHeight:  getEnvAsFloat64("MASK_BAND_HEIGHT", constants.DefaultMaskBand),
		},
		Fields: FieldsConfig{
			Concurrent: getEnvAsBool("FIELDS_CONCURRENT", false),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
			Dir:       getEnv("UPLOAD_DIR", constants.DefaultUploadDir),
			Bucket:    getEnv("S3_BUCKET", ""),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "auto"),
			AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			KeyPrefix: getEnv("S3_KEY_PREFIX", "resumes/"),
			PathStyle: getEnvAsBool("S3_PATH_STYLE", true),
		},
		Notify: NotifyConfig{
			AMQPURL:    getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "resume.events"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "resume.extracted"),
		},
		LLM: llmCfg,
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		ReuseByHash: getEnvAsBool("REUSE_BY_HASH", false),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("MAX_UPLOAD_MB", c.Server.MaxUploadMB, Positive).
		Field("MASK_BAND_HEIGHT", c.Preprocess.BandHeight, Positive).
		Field("STORAGE_BACKEND", c.Storage.Backend, OneOf("local", "s3", "none")).
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf("", "openai", "gemini")).
		Field("LOG_FORMAT", c.Log.Format, OneOf("json", "text", "pretty"))
	if c.Storage.Backend == "s3" {
		v.Field("S3_BUCKET", c.Storage.Bucket, Required)
	}
	if c.LLM.Provider != "" {
		v.Field("LLM API key", c.LLM.APIKey, Required)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
