package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"contratos/fields"
	"contratos/tabular"
)

const (
	KeyContractsURL       = "feeds.contracts.url"
	KeyContractsFormat    = "feeds.contracts.format"
	KeyContractsCharset   = "feeds.contracts.charset"
	KeyPaymentsURL        = "feeds.payments.url"
	KeyPaymentsFormat     = "feeds.payments.format"
	KeyPaymentsCharset    = "feeds.payments.charset"
	KeyDecodeTrimHeaders  = "decode.trim_headers"
	KeyHTTPTimeout        = "http.timeout"
	KeyHTTPUserAgent      = "http.user_agent"
	KeyHTTPMaxBytes       = "http.max_bytes"
	KeyStorageSnapshotDB  = "storage.snapshot_db"
	KeyStorageKeep        = "storage.keep"
	KeyServePort          = "serve.port"
	KeyServeCacheTTL      = "serve.cache_ttl"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
	KeyFields             = "fields"
)

const (
	DefaultContractsURL   = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQ0KGsk9HAH2ZP9I612PopHCOityrQtkqNAzCTJQkT9B5FqTmbv3ecPODsZJjAN4svMUzi9ILXWc3Oq/pub?gid=2116839656&single=true&output=csv"
	defaultUserAgent      = "contratos/1.0"
	defaultSnapshotDBPath = "./contratos.db"
)

type Config struct {
	Feeds   FeedsConfig              `mapstructure:"feeds"`
	Decode  DecodeConfig             `mapstructure:"decode"`
	HTTP    HTTPConfig               `mapstructure:"http"`
	Storage StorageConfig            `mapstructure:"storage"`
	Serve   ServeConfig              `mapstructure:"serve"`
	Log     LogConfig                `mapstructure:"log"`
	Fields  map[string]FieldOverride `mapstructure:"fields"`
}

type FeedsConfig struct {
	Contracts FeedConfig `mapstructure:"contracts"`
	Payments  FeedConfig `mapstructure:"payments"`
}

// FeedConfig describes one published spreadsheet. An empty URL disables the feed.
type FeedConfig struct {
	URL       string `mapstructure:"url" validate:"omitempty,url"`
	Format    string `mapstructure:"format" validate:"omitempty,oneof=csv tsv excel xlsx xlsm"`
	Charset   string `mapstructure:"charset"`
	Delimiter string `mapstructure:"delimiter"`
	Sheet     string `mapstructure:"sheet"`
}

type DecodeConfig struct {
	TrimHeaders bool `mapstructure:"trim_headers"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
	MaxBytes  int64         `mapstructure:"max_bytes" validate:"gt=0"`
}

// StorageConfig configures the snapshot database. An empty path disables snapshots.
type StorageConfig struct {
	SnapshotDB string `mapstructure:"snapshot_db"`
	Keep       int    `mapstructure:"keep" validate:"gte=0"`
}

type ServeConfig struct {
	Port     int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// FieldOverride replaces the built-in aliases and/or keywords of one field.
// Omitted lists keep the built-in values.
type FieldOverride struct {
	Aliases  []string `mapstructure:"aliases"`
	Keywords []string `mapstructure:"keywords"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# contratos configuration
feeds:
  contracts:
    url: "` + DefaultContractsURL + `"
    format: csv
    charset: utf-8
  payments:
    # Leave empty to disable the payments feed.
    url: ""
    format: csv
    charset: utf-8

decode:
  trim_headers: false

http:
  timeout: 30s
  user_agent: "` + defaultUserAgent + `"
  max_bytes: 33554432

storage:
  # Last successful downloads, served when the publisher is unreachable.
  snapshot_db: "` + defaultSnapshotDBPath + `"
  keep: 5

serve:
  port: 8080
  cache_ttl: 10m

log:
  level: info
  format: console

# Per-field header overrides, e.g.:
# fields:
#   creditor:
#     aliases: ["ENTIDADE", "CREDOR", "FORNECEDOR"]
#   executive:
#     keywords: ["secretaria executiva", "unidade gestora"]
fields: {}
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateFeeds(cfg.Feeds); err != nil {
		return nil, err
	}
	if _, err := cfg.Schema(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyContractsURL, DefaultContractsURL)
	v.SetDefault(KeyContractsFormat, "csv")
	v.SetDefault(KeyContractsCharset, "utf-8")
	v.SetDefault(KeyPaymentsURL, "")
	v.SetDefault(KeyPaymentsFormat, "csv")
	v.SetDefault(KeyPaymentsCharset, "utf-8")
	v.SetDefault(KeyDecodeTrimHeaders, false)
	v.SetDefault(KeyHTTPTimeout, "30s")
	v.SetDefault(KeyHTTPUserAgent, defaultUserAgent)
	v.SetDefault(KeyHTTPMaxBytes, 32<<20)
	v.SetDefault(KeyStorageSnapshotDB, defaultSnapshotDBPath)
	v.SetDefault(KeyStorageKeep, 5)
	v.SetDefault(KeyServePort, 8080)
	v.SetDefault(KeyServeCacheTTL, "10m")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyFields, map[string]any{})
}

func validateFeeds(feeds FeedsConfig) error {
	named := []struct {
		name string
		feed FeedConfig
	}{
		{"contracts", feeds.Contracts},
		{"payments", feeds.Payments},
	}
	for _, item := range named {
		if _, err := item.feed.DelimiterRune(); err != nil {
			return fmt.Errorf("validation failed: feeds.%s.delimiter: %w", item.name, err)
		}
		if _, err := tabular.NewDecoder(tabular.Options{Charset: item.feed.Charset}, nil); err != nil {
			return fmt.Errorf("validation failed: feeds.%s: %w", item.name, err)
		}
	}
	if strings.TrimSpace(feeds.Contracts.URL) == "" {
		return fmt.Errorf("validation failed: feeds.contracts.url is required")
	}
	return nil
}

// DelimiterRune parses the configured delimiter. Empty means infer from the
// header; "tab" and `\t` select a tab.
func (f FeedConfig) DelimiterRune() (rune, error) {
	value := f.Delimiter
	switch strings.ToLower(value) {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("delimiter %q is not allowed", value)
	}
	return r, nil
}

// DecodeOptions builds the tabular decoding options for the feed.
func (c Config) DecodeOptions(feed FeedConfig) tabular.Options {
	delimiter, _ := feed.DelimiterRune()
	return tabular.Options{
		Delimiter:   delimiter,
		TrimHeaders: c.Decode.TrimHeaders,
		Charset:     feed.Charset,
		Sheet:       feed.Sheet,
	}
}

// Schema returns the built-in field schema with the configured overrides
// applied. Field names are matched case-insensitively because configuration
// keys are not case-preserving.
func (c Config) Schema() (fields.Schema, error) {
	schema := fields.DefaultSchema()
	known := schema.Fields()

	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		index := slices.IndexFunc(known, func(field fields.Field) bool {
			return strings.EqualFold(string(field), name)
		})
		if index < 0 {
			return fields.Schema{}, fmt.Errorf("fields.%s: unknown field", name)
		}
		override := c.Fields[name]
		schema = schema.Override(known[index], override.Aliases, override.Keywords)
	}

	if err := schema.Validate(); err != nil {
		return fields.Schema{}, err
	}
	return schema, nil
}
