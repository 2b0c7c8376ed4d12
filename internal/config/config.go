package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "SALESPULSE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"2m" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RunTimeout      time.Duration `yaml:"run_timeout" envconfig:"RUN_TIMEOUT" default:"2m" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/salespulse.log"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir, or the working directory when BaseDir is empty.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR" default:"data/uploads" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports" validate:"required"`
	StagingDir string `yaml:"staging_dir" envconfig:"STAGING_DIR" default:"data/staging" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs" validate:"required"`
}

// AnalyticsConfig tunes the ingestion step
type AnalyticsConfig struct {
	DateLayouts []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`
	CSVBOM      bool     `yaml:"csv_bom" envconfig:"CSV_BOM" default:"false"`
}

// TelemetryConfig controls OpenTelemetry setup
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"salespulse" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=none stdout"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS" default:"true"`
}

// Load loads configuration from an optional YAML file and environment
// variables. Environment values win over file values.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := processEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// processEnv applies only the variables that are actually set so file values
// are not overwritten by envconfig defaults.
func processEnv(cfg *Config) error {
	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	overrides := map[string]func(){
		"SERVER_PORT":                 func() { cfg.Server.Port = env.Server.Port },
		"SERVER_READ_TIMEOUT":         func() { cfg.Server.ReadTimeout = env.Server.ReadTimeout },
		"SERVER_WRITE_TIMEOUT":        func() { cfg.Server.WriteTimeout = env.Server.WriteTimeout },
		"SERVER_IDLE_TIMEOUT":         func() { cfg.Server.IdleTimeout = env.Server.IdleTimeout },
		"SERVER_SHUTDOWN_TIMEOUT":     func() { cfg.Server.ShutdownTimeout = env.Server.ShutdownTimeout },
		"SERVER_RUN_TIMEOUT":          func() { cfg.Server.RunTimeout = env.Server.RunTimeout },
		"SECURITY_ALLOWED_ORIGINS":    func() { cfg.Security.AllowedOrigins = env.Security.AllowedOrigins },
		"SECURITY_ENABLE_CORS":        func() { cfg.Security.EnableCORS = env.Security.EnableCORS },
		"SECURITY_MAX_UPLOAD_BYTES":   func() { cfg.Security.MaxUploadBytes = env.Security.MaxUploadBytes },
		"SECURITY_RATE_LIMIT_ENABLED": func() { cfg.Security.RateLimit.Enabled = env.Security.RateLimit.Enabled },
		"SECURITY_RATE_LIMIT_RPS":     func() { cfg.Security.RateLimit.RPS = env.Security.RateLimit.RPS },
		"SECURITY_RATE_LIMIT_BURST":   func() { cfg.Security.RateLimit.Burst = env.Security.RateLimit.Burst },
		"LOGGING_LEVEL":               func() { cfg.Logging.Level = env.Logging.Level },
		"LOGGING_OUTPUT":              func() { cfg.Logging.Output = env.Logging.Output },
		"LOGGING_FILE_PATH":           func() { cfg.Logging.FilePath = env.Logging.FilePath },
		"PATHS_BASE_DIR":              func() { cfg.Paths.BaseDir = env.Paths.BaseDir },
		"PATHS_DATA_DIR":              func() { cfg.Paths.DataDir = env.Paths.DataDir },
		"PATHS_UPLOADS_DIR":           func() { cfg.Paths.UploadsDir = env.Paths.UploadsDir },
		"PATHS_REPORTS_DIR":           func() { cfg.Paths.ReportsDir = env.Paths.ReportsDir },
		"PATHS_STAGING_DIR":           func() { cfg.Paths.StagingDir = env.Paths.StagingDir },
		"PATHS_LOGS_DIR":              func() { cfg.Paths.LogsDir = env.Paths.LogsDir },
		"ANALYTICS_DATE_LAYOUTS":      func() { cfg.Analytics.DateLayouts = env.Analytics.DateLayouts },
		"ANALYTICS_CSV_BOM":           func() { cfg.Analytics.CSVBOM = env.Analytics.CSVBOM },
		"TELEMETRY_SERVICE_NAME":      func() { cfg.Telemetry.ServiceName = env.Telemetry.ServiceName },
		"TELEMETRY_TRACE_EXPORTER":    func() { cfg.Telemetry.TraceExporter = env.Telemetry.TraceExporter },
		"TELEMETRY_METRICS":           func() { cfg.Telemetry.Metrics = env.Telemetry.Metrics },
	}

	for key, apply := range overrides {
		if _, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
			apply()
		}
	}
	return nil
}

// Validate checks struct tags and normalizes logging settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	if len(c.Analytics.DateLayouts) == 0 {
		c.Analytics.DateLayouts = append([]string(nil), DefaultDateLayouts...)
	}

	return nil
}

// ResolvePaths returns absolute directories for this configuration
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    abs(c.Paths.DataDir),
		UploadsDir: abs(c.Paths.UploadsDir),
		ReportsDir: abs(c.Paths.ReportsDir),
		StagingDir: abs(c.Paths.StagingDir),
		LogsDir:    abs(c.Paths.LogsDir),
	}, nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RunTimeout:      2 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			MaxUploadBytes: DefaultMaxUploadBytes,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "console",
			FilePath: "logs/salespulse.log",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			UploadsDir: DefaultUploadsDir,
			ReportsDir: DefaultReportsDir,
			StagingDir: DefaultStagingDir,
			LogsDir:    DefaultLogsDir,
		},
		Analytics: AnalyticsConfig{
			DateLayouts: append([]string(nil), DefaultDateLayouts...),
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			TraceExporter: "none",
			Metrics:       true,
		},
	}
}
