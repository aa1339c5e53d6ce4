package pgcsv

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Config is everything a run needs. It is built once by the CLI and passed
// down explicitly.
type Config struct {
	Connection ConnectionConfig
	Load       LoadOptions

	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// FailOnError turns per-file failures into a non-zero exit.
	FailOnError bool
}

// Validate checks if the Config has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Connection.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Load.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadOptions controls where and how files are loaded.
type LoadOptions struct {
	// Schema is the namespace tables are created in.
	Schema string

	// SchemaOwner, when set, is used as AUTHORIZATION for CREATE SCHEMA.
	SchemaOwner string

	// Suffix filters directory entries (case-sensitive).
	Suffix string

	// StripChar is removed from every data field. Exactly one character.
	StripChar string

	// StrictColumns compares an existing table's columns with the header
	// before loading instead of letting COPY reject the data.
	StrictColumns bool
}

// DefaultLoadOptions returns the options used when nothing is configured.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Schema:    DefaultSchema,
		Suffix:    DefaultSuffix,
		StripChar: DefaultStripChar,
	}
}

func (o *LoadOptions) Validate() error {
	var errs []error

	if strings.TrimSpace(o.Schema) == "" {
		errs = append(errs, fmt.Errorf("schema is required: %w", ErrInvalidConfig))
	}
	if o.Suffix == "" {
		errs = append(errs, fmt.Errorf("suffix is required: %w", ErrInvalidConfig))
	}
	if utf8.RuneCountInString(o.StripChar) != 1 {
		errs = append(errs, fmt.Errorf("strip character must be exactly one character, got %q: %w", o.StripChar, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// Validate checks the fields every auth method needs.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range: %w", c.Port, ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %s: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}
	if c.AuthMethod == AuthMethodAWSIAM && c.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("aws region is required for AWS IAM authentication: %w", ErrInvalidConfig))
	}
	if c.AuthMethod == AuthMethodGoogleIAM && c.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("google instance is required for Google IAM authentication: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod accepts the names used in flags and pgcsv.yaml.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
