package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "DOCFIELDS"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Raster   RasterConfig   `mapstructure:"raster"`
	PDFText  PDFTextConfig  `mapstructure:"pdftext"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr       string        `mapstructure:"grpc_addr"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
	MaxUploadBytes int           `mapstructure:"max_upload_bytes"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int           `mapstructure:"rate_burst"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string `mapstructure:"engine"` // cli | gosseract
	Tesseract     string `mapstructure:"tesseract"`
	Language      string `mapstructure:"language"`
	TessdataDir   string `mapstructure:"tessdata_dir"`
	PSM           int    `mapstructure:"psm"`
	HeicConverter string `mapstructure:"heic_converter"`
}

// RasterConfig controls PDF page rendering for the image pipeline.
type RasterConfig struct {
	Backend  string `mapstructure:"backend"` // pdftoppm | fitz
	Pdftoppm string `mapstructure:"pdftoppm"`
	DPI      int    `mapstructure:"dpi"`
	MaxPages int    `mapstructure:"max_pages"`
}

type PDFTextConfig struct {
	Pdftotext      string `mapstructure:"pdftotext"`
	EnableFallback bool   `mapstructure:"enable_fallback"`
}

type PipelineConfig struct {
	Policy         string `mapstructure:"policy"`
	Strategy       string `mapstructure:"strategy"`
	ValidateSchema bool   `mapstructure:"validate_schema"`
}

type QueueConfig struct {
	Workers int           `mapstructure:"workers"`
	Size    int           `mapstructure:"size"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from defaults, an optional file and DOCFIELDS_* environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "config file not found", err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// DOCFIELDS_OCR_LANGUAGE, DOCFIELDS_RASTER_DPI, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 8)

	v.SetDefault("ocr.engine", "cli")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.language", "rus")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.psm", 0)
	v.SetDefault("ocr.heic_converter", "magick")

	v.SetDefault("raster.backend", "pdftoppm")
	v.SetDefault("raster.pdftoppm", "pdftoppm")
	v.SetDefault("raster.dpi", 300)
	v.SetDefault("raster.max_pages", 0)

	v.SetDefault("pdftext.pdftotext", "pdftotext")
	v.SetDefault("pdftext.enable_fallback", true)

	v.SetDefault("pipeline.policy", "text-first")
	v.SetDefault("pipeline.strategy", "structural")
	v.SetDefault("pipeline.validate_schema", true)

	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.size", 256)
	v.SetDefault("queue.timeout", 3*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("server.grpc_addr", c.Server.GRPCAddr, Required).
		Field("ocr.engine", c.OCR.Engine, OneOf("cli", "gosseract")).
		Field("ocr.language", c.OCR.Language, Required).
		Field("raster.backend", c.Raster.Backend, OneOf("pdftoppm", "fitz")).
		Field("raster.dpi", c.Raster.DPI, Positive).
		Field("pipeline.policy", c.Pipeline.Policy, OneOf("text-first", "image-only", "supplement")).
		Field("pipeline.strategy", c.Pipeline.Strategy, OneOf("structural", "edges")).
		Field("queue.workers", c.Queue.Workers, Positive).
		Field("log.format", c.Log.Format, OneOf("json", "text"))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
