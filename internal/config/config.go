package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	CRM        CRMConfig        `yaml:"crm" mapstructure:"crm"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// CRMConfig configures the lead fetch.
type CRMConfig struct {
	LeadSource string  `yaml:"lead_source" mapstructure:"lead_source"`
	MaxRecords int     `yaml:"max_records" mapstructure:"max_records"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// IngestConfig configures archive processing.
type IngestConfig struct {
	Concurrency int   `yaml:"concurrency" mapstructure:"concurrency"`
	MaxUploadMB int64 `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// ServerConfig configures the upload server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BIDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("crm.lead_source", "Construction Feed")
	v.SetDefault("crm.max_records", 10000)
	v.SetDefault("crm.rate_limit", 5.0)
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.max_upload_mb", 64)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
