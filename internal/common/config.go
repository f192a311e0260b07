package common

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Store  StoreConfig
	Server ServerConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Ingest IngestConfig
	Cache  CacheConfig
	Log    LogConfig
}

// StoreConfig selects and configures the catalogue store backend
type StoreConfig struct {
	Backend    string `validate:"oneof=sqlite bleve postgres mongo memory"`
	SQLitePath string `validate:"required_if=Backend sqlite"`
	BlevePath  string
	Database   DatabaseConfig
	Mongo      MongoConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32 `validate:"gte=1"`
	MinConns         int32 `validate:"gte=0"`
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// MongoConfig holds document store configuration for MongoDB
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string `validate:"required"`
	GRPCAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine      string `validate:"oneof=cli gosseract"`
	Pdftotext   string
	Pdftoppm    string
	Tesseract   string
	Lang        string `validate:"required"`
	DPI         int    `validate:"gte=72,lte=1200"`
	MaxPages    int    `validate:"gte=0"`
	TessdataDir string
	Timeout     time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider     string `validate:"oneof=openai gemini none"`
	Model        string
	APIKey       string
	BaseURL      string
	Temperature  float32 `validate:"gte=0,lte=2"`
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
}

// IngestConfig bounds batch ingestion
type IngestConfig struct {
	Workers         int `validate:"gte=1,lte=64"`
	DocumentTimeout time.Duration
}

// CacheConfig configures the optional Redis search cache
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE_BACKEND", "sqlite")
	v.SetDefault("SQLITE_PATH", "products.db")
	v.SetDefault("BLEVE_PATH", "")
	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_MAX_CONN_IDLE_TIME", 5*time.Minute)
	v.SetDefault("DB_DIAL_TIMEOUT", 3*time.Second)
	v.SetDefault("DB_STATEMENT_TIMEOUT", time.Duration(0))
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/")
	v.SetDefault("MONGO_DATABASE", "pdf_text_db")
	v.SetDefault("MONGO_COLLECTION", "extracted_text")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SEARCH_CACHE_TTL", 5*time.Minute)
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_ADDR", "")
	v.SetDefault("OCR_ENGINE", "cli")
	v.SetDefault("PDFTOTEXT", "pdftotext")
	v.SetDefault("PDFTOPPM", "pdftoppm")
	v.SetDefault("TESSERACT", "tesseract")
	v.SetDefault("OCR_LANG", "eng")
	v.SetDefault("OCR_DPI", 300)
	v.SetDefault("OCR_MAX_PAGES", 0)
	v.SetDefault("TESSDATA_PREFIX", "")
	v.SetDefault("OCR_TIMEOUT", 2*time.Minute)
	v.SetDefault("LLM_PROVIDER", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TEMPERATURE", 0.0)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("LLM_TIMEOUT", 90*time.Second)
	v.SetDefault("INGEST_WORKERS", 4)
	v.SetDefault("DOCUMENT_TIMEOUT", 5*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig loads configuration from environment variables, optionally
// layered over a config file (yaml, json or toml) when path is non-empty.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "failed to read config file "+path, err)
		}
	}

	cfg := &Config{
		Store: StoreConfig{
			Backend:    strings.ToLower(v.GetString("STORE_BACKEND")),
			SQLitePath: v.GetString("SQLITE_PATH"),
			BlevePath:  v.GetString("BLEVE_PATH"),
			Database: DatabaseConfig{
				DSN:              v.GetString("DB_URL"),
				MaxConns:         v.GetInt32("DB_MAX_CONNS"),
				MinConns:         v.GetInt32("DB_MIN_CONNS"),
				MaxConnLifetime:  v.GetDuration("DB_MAX_CONN_LIFETIME"),
				MaxConnIdleTime:  v.GetDuration("DB_MAX_CONN_IDLE_TIME"),
				DialTimeout:      v.GetDuration("DB_DIAL_TIMEOUT"),
				StatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),
			},
			Mongo: MongoConfig{
				URI:        v.GetString("MONGO_URI"),
				Database:   v.GetString("MONGO_DATABASE"),
				Collection: v.GetString("MONGO_COLLECTION"),
			},
		},
		Server: ServerConfig{
			HTTPAddr: v.GetString("HTTP_ADDR"),
			GRPCAddr: v.GetString("GRPC_ADDR"),
		},
		OCR: OCRConfig{
			Engine:      strings.ToLower(v.GetString("OCR_ENGINE")),
			Pdftotext:   v.GetString("PDFTOTEXT"),
			Pdftoppm:    v.GetString("PDFTOPPM"),
			Tesseract:   v.GetString("TESSERACT"),
			Lang:        v.GetString("OCR_LANG"),
			DPI:         v.GetInt("OCR_DPI"),
			MaxPages:    v.GetInt("OCR_MAX_PAGES"),
			TessdataDir: v.GetString("TESSDATA_PREFIX"),
			Timeout:     v.GetDuration("OCR_TIMEOUT"),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(v.GetString("LLM_PROVIDER")),
			Model:        v.GetString("OPENAI_MODEL"),
			APIKey:       v.GetString("OPENAI_API_KEY"),
			BaseURL:      v.GetString("OPENAI_BASE_URL"),
			Temperature:  float32(v.GetFloat64("OPENAI_TEMPERATURE")),
			GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
			GeminiModel:  v.GetString("GEMINI_MODEL"),
			Timeout:      v.GetDuration("LLM_TIMEOUT"),
		},
		Ingest: IngestConfig{
			Workers:         v.GetInt("INGEST_WORKERS"),
			DocumentTimeout: v.GetDuration("DOCUMENT_TIMEOUT"),
		},
		Cache: CacheConfig{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTL:           v.GetDuration("SEARCH_CACHE_TTL"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if cfg.LLM.Provider == "" {
		switch {
		case cfg.LLM.APIKey != "":
			cfg.LLM.Provider = "openai"
		case cfg.LLM.GeminiAPIKey != "":
			cfg.LLM.Provider = "gemini"
		default:
			cfg.LLM.Provider = "none"
		}
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	switch c.Store.Backend {
	case "postgres":
		if c.Store.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres store", ErrInvalidInput)
		}
	case "mongo":
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			return NewAppError("CONFIG_ERROR", "MONGO_URI, MONGO_DATABASE and MONGO_COLLECTION are required for the mongo store", ErrInvalidInput)
		}
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	}
	return nil
}
