package common

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Analysis AnalysisConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr          string
	GRPCAddr          string
	StaticDir         string
	MaxUploadBytes    int64
	CORSOrigins       []string
	RateLimitRPS      float64
	RateLimitBurst    int
	ValidateResponses bool
}

// UploadConfig holds upload staging configuration
type UploadConfig struct {
	Dir string
}

// AnalysisConfig holds pipeline and worker configuration
type AnalysisConfig struct {
	LexiconPath   string
	Workers       int
	QueueSize     int
	Timeout       time.Duration
	RawTextLimit  int
	MaxTables     int
	MaxEntities   int
	Normalization string
	IsolatePages  bool
	ColumnGap     float64
	MaxPages      int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:          getEnv("HTTP_ADDR", ":5000"),
			GRPCAddr:          getEnvAllowEmpty("GRPC_ADDR", ":50051"),
			StaticDir:         getEnv("STATIC_DIR", "static"),
			MaxUploadBytes:    getEnvAsInt64("MAX_UPLOAD_BYTES", 16<<20),
			CORSOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitRPS:      getEnvAsFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 10),
			ValidateResponses: getEnvAsBool("VALIDATE_RESPONSES", false),
		},
		Upload: UploadConfig{
			Dir: getEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "pdf-ui-uploads")),
		},
		Analysis: AnalysisConfig{
			LexiconPath:   getEnv("LEXICON_PATH", ""),
			Workers:       getEnvAsInt("ANALYSIS_WORKERS", 4),
			QueueSize:     getEnvAsInt("ANALYSIS_QUEUE_SIZE", 64),
			Timeout:       getEnvAsDuration("ANALYSIS_TIMEOUT", 2*time.Minute),
			RawTextLimit:  getEnvAsInt("RAW_TEXT_LIMIT", 5000),
			MaxTables:     getEnvAsInt("MAX_TABLES", 5),
			MaxEntities:   getEnvAsInt("MAX_ENTITIES", 20),
			Normalization: strings.ToLower(getEnv("TEXT_NORMALIZATION", "nfkc")),
			IsolatePages:  getEnvAsBool("ISOLATE_PAGES", true),
			ColumnGap:     getEnvAsFloat("TABLE_COLUMN_GAP", 1.5),
			MaxPages:      getEnvAsInt("MAX_PAGES", 0),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("HTTP_ADDR", c.Server.HTTPAddr, Required)
	v.Field("STATIC_DIR", c.Server.StaticDir, Required)
	v.Field("UPLOAD_DIR", c.Upload.Dir, Required)
	v.Field("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes, Positive)
	v.Field("RATE_LIMIT_BURST", c.Server.RateLimitBurst, Positive)
	v.Field("ANALYSIS_WORKERS", c.Analysis.Workers, Positive)
	v.Field("ANALYSIS_QUEUE_SIZE", c.Analysis.QueueSize, Positive)
	v.Field("ANALYSIS_TIMEOUT", c.Analysis.Timeout, Positive)
	v.Field("RAW_TEXT_LIMIT", c.Analysis.RawTextLimit, Positive)
	v.Field("MAX_TABLES", c.Analysis.MaxTables, NonNegative)
	v.Field("MAX_ENTITIES", c.Analysis.MaxEntities, NonNegative)
	v.Field("MAX_PAGES", c.Analysis.MaxPages, NonNegative)
	v.Field("TABLE_COLUMN_GAP", c.Analysis.ColumnGap, Positive)
	v.Field("TEXT_NORMALIZATION", c.Analysis.Normalization, OneOf("nfkc", "nfc", "none"))
	v.Field("LOG_LEVEL", c.Log.Level, OneOf("debug", "info", "warn", "error"))
	v.Field("LOG_FORMAT", c.Log.Format, OneOf("text", "json"))
	if c.Server.RateLimitRPS < 0 {
		v.Field("RATE_LIMIT_RPS", c.Server.RateLimitRPS, Positive)
	}

	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrValidation)
	}
	return nil
}
