package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Inpatient sources.
const (
	SourceTrakCare = "trakcare"
	SourceSQLite   = "sqlite"
	SourceCareFlow = "careflow"
)

// Archive drivers.
const (
	ArchiveMemory = "memory"
	ArchiveS3     = "s3"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`

	InpatientSource string `mapstructure:"INPATIENT_SOURCE"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32  `mapstructure:"DB_MIN_CONNS"`
	InpatientView   string `mapstructure:"INPATIENT_VIEW"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`

	CareFlowBaseURL   string        `mapstructure:"CAREFLOW_BASE_URL"`
	CareFlowAPIURL    string        `mapstructure:"CAREFLOW_API_URL"`
	CareFlowUsername  string        `mapstructure:"CAREFLOW_USERNAME"`
	CareFlowPassword  string        `mapstructure:"CAREFLOW_PASSWORD"`
	CareFlowNetworkID int           `mapstructure:"CAREFLOW_NETWORK_ID"`
	CareFlowWorkers   int           `mapstructure:"CAREFLOW_WORKERS"`
	CareFlowTimeout   time.Duration `mapstructure:"CAREFLOW_TIMEOUT"`

	ListRootDir   string `mapstructure:"LIST_ROOT_DIR"`
	WorkbookSheet string `mapstructure:"WORKBOOK_SHEET"`

	ArchiveDriver      string `mapstructure:"ARCHIVE_DRIVER"`
	ArchiveS3Bucket    string `mapstructure:"ARCHIVE_S3_BUCKET"`
	ArchiveS3Region    string `mapstructure:"ARCHIVE_S3_REGION"`
	ArchiveS3Endpoint  string `mapstructure:"ARCHIVE_S3_ENDPOINT"`
	ArchiveS3PathStyle bool   `mapstructure:"ARCHIVE_S3_PATH_STYLE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "REQUEST_TIMEOUT", "BODY_LIMIT",
	"INPATIENT_SOURCE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "INPATIENT_VIEW", "SQLITE_PATH",
	"CAREFLOW_BASE_URL", "CAREFLOW_API_URL", "CAREFLOW_USERNAME", "CAREFLOW_PASSWORD",
	"CAREFLOW_NETWORK_ID", "CAREFLOW_WORKERS", "CAREFLOW_TIMEOUT",
	"LIST_ROOT_DIR", "WORKBOOK_SHEET",
	"ARCHIVE_DRIVER", "ARCHIVE_S3_BUCKET", "ARCHIVE_S3_REGION", "ARCHIVE_S3_ENDPOINT", "ARCHIVE_S3_PATH_STYLE",
}

// Load reads .env when present, then the environment. Nothing is validated
// here; commands call Validate once they know which collaborators they need.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "2m")
	v.SetDefault("BODY_LIMIT", "25M")
	v.SetDefault("INPATIENT_SOURCE", SourceTrakCare)
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("INPATIENT_VIEW", "vw_current_inpatients")
	v.SetDefault("CAREFLOW_NETWORK_ID", 1123)
	v.SetDefault("CAREFLOW_WORKERS", 4)
	v.SetDefault("CAREFLOW_TIMEOUT", "30s")
	v.SetDefault("LIST_ROOT_DIR", "./lists")
	v.SetDefault("WORKBOOK_SHEET", "Handover")
	v.SetDefault("ARCHIVE_DRIVER", ArchiveMemory)
	v.SetDefault("ARCHIVE_S3_REGION", "eu-west-2")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.InpatientSource = strings.ToLower(strings.TrimSpace(cfg.InpatientSource))
	cfg.ArchiveDriver = strings.ToLower(strings.TrimSpace(cfg.ArchiveDriver))
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the selected inpatient source and archive driver have
// what they need. CareFlow credentials are not required here: a missing
// username or password surfaces from the fetch itself.
func (c *Config) Validate() error {
	switch c.InpatientSource {
	case SourceTrakCare:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when INPATIENT_SOURCE is %q", SourceTrakCare)
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when INPATIENT_SOURCE is %q", SourceSQLite)
		}
	case SourceCareFlow:
		if c.CareFlowWorkers < 1 {
			return fmt.Errorf("CAREFLOW_WORKERS must be at least 1, got %d", c.CareFlowWorkers)
		}
	default:
		return fmt.Errorf("INPATIENT_SOURCE must be %q, %q or %q, got %q",
			SourceTrakCare, SourceSQLite, SourceCareFlow, c.InpatientSource)
	}

	switch c.ArchiveDriver {
	case ArchiveMemory:
	case ArchiveS3:
		if c.ArchiveS3Bucket == "" {
			return fmt.Errorf("ARCHIVE_S3_BUCKET is required when ARCHIVE_DRIVER is %q", ArchiveS3)
		}
	default:
		return fmt.Errorf("ARCHIVE_DRIVER must be %q or %q, got %q", ArchiveMemory, ArchiveS3, c.ArchiveDriver)
	}

	if c.ListRootDir == "" {
		return fmt.Errorf("LIST_ROOT_DIR must not be empty")
	}
	return nil
}
