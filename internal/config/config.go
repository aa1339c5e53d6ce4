package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vvka-141/pgcsv/pkg/pgcsv"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// FileName is looked up in the working directory when --config is not given.
const FileName = "pgcsv.yaml"

// ConnectionConfig is the connection section of pgcsv.yaml.
type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Database       string `yaml:"database"`
	User           string `yaml:"user"`
	Password       string `yaml:"password,omitempty"`
	Port           int    `yaml:"port"`
	SSLMode        string `yaml:"sslmode,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// LoadConfig is the load section of pgcsv.yaml.
type LoadConfig struct {
	Schema        string `yaml:"schema,omitempty"`
	SchemaOwner   string `yaml:"schema_owner,omitempty"`
	Suffix        string `yaml:"suffix,omitempty"`
	StripChar     string `yaml:"strip_char,omitempty"`
	StrictColumns *bool  `yaml:"strict_columns,omitempty"`
}

// FileConfig mirrors pgcsv.yaml.
type FileConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Load       LoadConfig       `yaml:"load"`
	Timeout    string           `yaml:"timeout,omitempty"`
}

// Load reads the config file at path. A missing file returns
// ErrConfigNotFound; unknown keys and malformed YAML are
// pgcsv.ErrInvalidConfig.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: %w", path, pgcsv.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// LoadFromDir reads FileName inside dir.
func LoadFromDir(dir string) (*FileConfig, error) {
	return Load(filepath.Join(dir, FileName))
}

// ApplyLoadOptions overlays the non-empty load settings onto opts.
func (c *FileConfig) ApplyLoadOptions(opts *pgcsv.LoadOptions) {
	if c == nil {
		return
	}
	if c.Load.Schema != "" {
		opts.Schema = c.Load.Schema
	}
	if c.Load.SchemaOwner != "" {
		opts.SchemaOwner = c.Load.SchemaOwner
	}
	if c.Load.Suffix != "" {
		opts.Suffix = c.Load.Suffix
	}
	if c.Load.StripChar != "" {
		opts.StripChar = c.Load.StripChar
	}
	if c.Load.StrictColumns != nil {
		opts.StrictColumns = *c.Load.StrictColumns
	}
}

// TimeoutDuration parses the timeout setting. An empty value returns zero.
func (c *FileConfig) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, FileName, pgcsv.ErrInvalidConfig)
	}
	return d, nil
}

// Save writes cfg as YAML to path with owner-only permissions, since the
// file may hold a password.
func Save(path string, cfg *FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
