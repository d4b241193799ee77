package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variables consulted for source overrides.
const (
	EnvSciHubMirror   = "SCIHUB_MIRROR"
	EnvSemanticAPIKey = "SEMANTIC_SCHOLAR_API_KEY"
)

// Defaults shared by the CLI and tests.
const (
	DefaultSciHubMirror    = "https://sci-hub.se"
	DefaultSemanticBaseURL = "https://api.semanticscholar.org/graph/v1"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryBaseDelay  = 1 * time.Second
	DefaultDownloadDirName = "paper_downloads"
)

// SciHubMirrors lists known Sci-Hub mirrors. The first entry is the default.
var SciHubMirrors = []string{
	"https://sci-hub.se",
	"https://sci-hub.st",
	"https://sci-hub.ru",
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RetryConfig bounds retry behavior for a single call.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// BaseDelay is the first backoff interval; it doubles each retry.
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay" validate:"gte=0"`
}

// SciHubConfig holds settings for the Sci-Hub resolver and fetcher.
type SciHubConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Mirror is the Sci-Hub base URL (e.g. "https://sci-hub.se").
	Mirror string `json:"mirror" yaml:"mirror" mapstructure:"mirror" validate:"required,url"`
}

// SemanticConfig holds settings for the Semantic Scholar client.
type SemanticConfig struct {
	HTTPConfig  `yaml:",inline" mapstructure:",squash"`
	RetryConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the Graph API root.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// APIKey is sent as x-api-key when present and grants dedicated quota.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MinInterval is the minimum spacing between consecutive requests.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval" validate:"gte=0"`
}

// DownloadConfig holds settings for the PDF download strategies.
type DownloadConfig struct {
	RetryConfig `yaml:",inline" mapstructure:",squash"`

	// ConnectTimeout bounds TCP connect (curl --connect-timeout, dialer timeout).
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gte=0"`

	// ReadTimeout bounds a streamed HTTP download once connected.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`

	// MaxTime bounds a whole curl transfer (curl --max-time).
	MaxTime time.Duration `json:"max_time" yaml:"max_time" mapstructure:"max_time" validate:"gte=0"`

	// MinSize is the curl size floor: files of MinSize bytes or fewer are discarded.
	MinSize int64 `json:"min_size" yaml:"min_size" mapstructure:"min_size" validate:"gte=0"`

	// UseCurl enables the external curl strategy ahead of the HTTP fallback.
	UseCurl bool `json:"use_curl" yaml:"use_curl" mapstructure:"use_curl"`

	// UserAgent is sent by the HTTP strategy.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ConversionBackend identifies the PDF-to-Markdown tool.
type ConversionBackend string

const (
	BackendPDFText    ConversionBackend = "pdftext"
	BackendDocconv    ConversionBackend = "docconv"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConversionConfig holds settings for the text extraction stage.
type ConversionConfig struct {
	// Backend selects the conversion tool: pdftext, docconv, or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=pdftext docconv markitdown"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`
}

// Config groups every stage configuration.
type Config struct {
	SciHub     SciHubConfig     `json:"scihub" yaml:"scihub" mapstructure:"scihub"`
	Semantic   SemanticConfig   `json:"semantic" yaml:"semantic" mapstructure:"semantic"`
	Download   DownloadConfig   `json:"download" yaml:"download" mapstructure:"download"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`

	// OutputDir is where downloaded PDFs land (default ~/paper_downloads).
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	// LibraryDB is the path of the download ledger database. Empty means
	// library.db inside OutputDir.
	LibraryDB string `json:"library_db,omitempty" yaml:"library_db,omitempty" mapstructure:"library_db"`
}

// DefaultConfig returns a Config populated with defaults and the
// SCIHUB_MIRROR / SEMANTIC_SCHOLAR_API_KEY environment overrides.
func DefaultConfig() Config {
	apiKey := os.Getenv(EnvSemanticAPIKey)
	return Config{
		SciHub: SciHubConfig{
			HTTPConfig: HTTPConfig{Timeout: DefaultTimeout, UserAgent: BrowserUserAgent},
			Mirror:     MirrorFromEnv(""),
		},
		Semantic: SemanticConfig{
			HTTPConfig:  HTTPConfig{Timeout: DefaultTimeout, UserAgent: "paperfetch/1.0"},
			RetryConfig: RetryConfig{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultRetryBaseDelay},
			BaseURL:     DefaultSemanticBaseURL,
			APIKey:      apiKey,
			MinInterval: SemanticInterval(apiKey),
		},
		Download: DownloadConfig{
			RetryConfig:    RetryConfig{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultRetryBaseDelay},
			ConnectTimeout: 30 * time.Second,
			ReadTimeout:    180 * time.Second,
			MaxTime:        300 * time.Second,
			MinSize:        1000,
			UseCurl:        true,
			UserAgent:      BrowserUserAgent,
		},
		Conversion: ConversionConfig{Backend: BackendPDFText},
		Logging:    LoggingConfig{Level: "info", Format: "console"},
		OutputDir:  DefaultOutputDir(),
	}
}

// BrowserUserAgent is sent to sites that reject non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// MirrorFromEnv picks the Sci-Hub mirror: the explicit value, then
// SCIHUB_MIRROR, then the first known mirror. Trailing slashes are dropped.
func MirrorFromEnv(explicit string) string {
	m := explicit
	if m == "" {
		m = os.Getenv(EnvSciHubMirror)
	}
	if m == "" {
		m = SciHubMirrors[0]
	}
	return strings.TrimRight(m, "/")
}

// SemanticInterval returns the minimum request spacing for Semantic Scholar.
// An API key grants a dedicated 1 RPS quota; anonymous access shares a
// pool and is paced at 0.5 s.
func SemanticInterval(apiKey string) time.Duration {
	if apiKey != "" {
		return time.Second
	}
	return 500 * time.Millisecond
}

// DefaultOutputDir returns ~/paper_downloads, or ./paper_downloads when the
// home directory cannot be determined.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDownloadDirName
	}
	return filepath.Join(home, DefaultDownloadDirName)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints on the whole configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
