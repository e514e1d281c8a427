package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	defaultInputGlob      = "./data/*.json"
	defaultOutputDir      = "./output"
	defaultDatabasePath   = "~/.local/share/vcon-insights/insights.db"
	defaultExportPrefix   = "vcon_analysis"
	defaultWorkers        = 4
	defaultBrandToken     = "feelgoodspas"
	defaultOrgKeyword     = "spa"
	defaultCRMTimeout     = 30
	defaultCRMMaxRetries  = 3
	defaultCRMBatchSize   = 50
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultConfigLocation = "~/.config/vcon-insights/config.toml"
	projectConfigName     = "vcon-insights.toml"
)

// Paths contains file and directory configuration.
type Paths struct {
	InputGlob    string `toml:"input_glob"`
	OutputDir    string `toml:"output_dir"`
	LexiconPath  string `toml:"lexicon_path"`
	DatabasePath string `toml:"database_path"`
}

// Enrich contains feature extraction settings.
type Enrich struct {
	Workers    int    `toml:"workers"`
	BrandToken string `toml:"brand_token"`
	OrgKeyword string `toml:"org_keyword"`
}

// Export contains dataset output settings.
type Export struct {
	Formats []string `toml:"formats"`
	Prefix  string   `toml:"prefix"`
}

// CRM contains webhook delivery settings for pushing enriched records
// downstream. Secret and endpoint may come from the environment instead of
// the file; environment values win.
type CRM struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Secret         string `toml:"secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	BatchSize      int    `toml:"batch_size"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for vcon-insights.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Enrich  Enrich  `toml:"enrich"`
	Export  Export  `toml:"export"`
	CRM     CRM     `toml:"crm"`
	Logging Logging `toml:"logging"`
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputGlob:    defaultInputGlob,
			OutputDir:    defaultOutputDir,
			DatabasePath: defaultDatabasePath,
		},
		Enrich: Enrich{
			Workers:    defaultWorkers,
			BrandToken: defaultBrandToken,
			OrgKeyword: defaultOrgKeyword,
		},
		Export: Export{
			Formats: []string{"csv"},
			Prefix:  defaultExportPrefix,
		},
		CRM: CRM{
			TimeoutSeconds: defaultCRMTimeout,
			MaxRetries:     defaultCRMMaxRetries,
			BatchSize:      defaultCRMBatchSize,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigLocation)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists at
// any known location the defaults are returned with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := ExpandPath(defaultConfigLocation)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = ExpandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LexiconPath) != "" {
		if c.Paths.LexiconPath, err = ExpandPath(c.Paths.LexiconPath); err != nil {
			return fmt.Errorf("paths.lexicon_path: %w", err)
		}
	}
	c.Paths.InputGlob = strings.TrimSpace(c.Paths.InputGlob)
	if c.Paths.InputGlob == "" {
		c.Paths.InputGlob = defaultInputGlob
	}

	if c.Enrich.Workers <= 0 {
		c.Enrich.Workers = defaultWorkers
	}
	c.Enrich.BrandToken = strings.ToLower(strings.TrimSpace(c.Enrich.BrandToken))
	if c.Enrich.BrandToken == "" {
		c.Enrich.BrandToken = defaultBrandToken
	}
	c.Enrich.OrgKeyword = strings.ToLower(strings.TrimSpace(c.Enrich.OrgKeyword))
	if c.Enrich.OrgKeyword == "" {
		c.Enrich.OrgKeyword = defaultOrgKeyword
	}

	c.normalizeExport()
	c.normalizeCRM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeExport() {
	formats := make([]string, 0, len(c.Export.Formats))
	seen := make(map[string]struct{}, len(c.Export.Formats))
	for _, format := range c.Export.Formats {
		normalized := strings.ToLower(strings.TrimSpace(format))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = []string{"csv"}
	}
	c.Export.Formats = formats
	c.Export.Prefix = strings.TrimSpace(c.Export.Prefix)
	if c.Export.Prefix == "" {
		c.Export.Prefix = defaultExportPrefix
	}
}

func (c *Config) normalizeCRM() {
	c.CRM.Endpoint = strings.TrimSpace(c.CRM.Endpoint)
	if value, ok := os.LookupEnv("CRM_ENDPOINT"); ok && strings.TrimSpace(value) != "" {
		c.CRM.Endpoint = strings.TrimSpace(value)
	}
	c.CRM.Secret = strings.TrimSpace(c.CRM.Secret)
	if value, ok := os.LookupEnv("CRM_WEBHOOK_SECRET"); ok && strings.TrimSpace(value) != "" {
		c.CRM.Secret = strings.TrimSpace(value)
	}
	if c.CRM.TimeoutSeconds <= 0 {
		c.CRM.TimeoutSeconds = defaultCRMTimeout
	}
	if c.CRM.MaxRetries < 0 {
		c.CRM.MaxRetries = defaultCRMMaxRetries
	}
	if c.CRM.BatchSize <= 0 {
		c.CRM.BatchSize = defaultCRMBatchSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "text":
		c.Logging.Format = "text"
	case "json":
	default:
		c.Logging.Format = "text"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, format := range c.Export.Formats {
		if format != "csv" && format != "xlsx" {
			return fmt.Errorf("export.formats: unsupported format %q (want csv or xlsx)", format)
		}
	}
	if c.Enrich.Workers <= 0 {
		return errors.New("enrich.workers must be positive")
	}
	if c.CRM.Enabled {
		if c.CRM.Endpoint == "" {
			return errors.New("crm.endpoint must be set when crm.enabled is true (or set CRM_ENDPOINT)")
		}
		if c.CRM.Secret == "" {
			return errors.New("crm.secret must be set when crm.enabled is true (or set CRM_WEBHOOK_SECRET)")
		}
	}
	return nil
}

// EnsureDirectories creates the output and database directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, filepath.Dir(c.Paths.DatabasePath)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the home directory and returns the
// cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
