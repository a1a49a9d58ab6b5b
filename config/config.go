// Package config loads cosmosload settings.
//
// Precedence: defaults, then the YAML file, then COSMOSLOAD_* environment
// variables. Command line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Abraxas-365/cosmosloader/cosmosdb"
	"github.com/Abraxas-365/cosmosloader/export"
	"github.com/Abraxas-365/cosmosloader/internal/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "COSMOSLOAD_"

// Config is the complete cosmosload configuration
type Config struct {
	Cosmos cosmosdb.Config `yaml:"cosmos"`
	Output OutputConfig    `yaml:"output"`
	Log    LogConfig       `yaml:"log"`
}

// OutputConfig controls where documents are written
type OutputConfig struct {
	// Target is "-", a file path, s3://bucket/key or azblob://container/blob
	Target    string `yaml:"target"`
	Overwrite bool   `yaml:"overwrite"`
	MaxItems  int    `yaml:"max_items"`

	S3 S3Config `yaml:"s3"`
	// AzureStorageConnectionString authenticates azblob:// targets
	AzureStorageConnectionString string `yaml:"azure_storage_connection_string"`
}

// S3Config holds S3 client settings for s3:// targets
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// LogConfig selects the logger level and encoding
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		Cosmos: cosmosdb.DefaultConfig(),
		Output: OutputConfig{
			Target: "-",
			S3:     S3Config{Region: "us-east-1"},
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads defaults, the optional YAML file at path and the process environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()

		if err := cfg.Decode(f); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(c)
}

// ApplyEnv overlays COSMOSLOAD_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CONNECTION_STRING":               &c.Cosmos.ConnectionString,
		"DATABASE":                        &c.Cosmos.Database,
		"CONTAINER":                       &c.Cosmos.Container,
		"QUERY":                           &c.Cosmos.Query,
		"JQ_SCHEMA":                       &c.Cosmos.JQSchema,
		"PARTITION_KEY":                   &c.Cosmos.PartitionKey,
		"OUTPUT":                          &c.Output.Target,
		"AZURE_STORAGE_CONNECTION_STRING": &c.Output.AzureStorageConnectionString,
		"S3_REGION":                       &c.Output.S3.Region,
		"S3_ENDPOINT":                     &c.Output.S3.Endpoint,
		"S3_ACCESS_KEY_ID":                &c.Output.S3.AccessKeyID,
		"S3_SECRET_ACCESS_KEY":            &c.Output.S3.SecretAccessKey,
		"LOG_LEVEL":                       &c.Log.Level,
		"LOG_FORMAT":                      &c.Log.Format,
	}
	bools := map[string]*bool{
		"ENABLE_CROSS_PARTITION_QUERY": &c.Cosmos.EnableCrossPartitionQuery,
		"TEXT_CONTENT":                 &c.Cosmos.TextContent,
		"OVERWRITE":                    &c.Output.Overwrite,
		"S3_USE_PATH_STYLE":            &c.Output.S3.UsePathStyle,
	}

	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	var errs []error
	for name, dst := range bools {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			continue
		}
		*dst = b
	}

	if v, ok := lookup(EnvPrefix + "MAX_ITEMS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_ITEMS: %w", EnvPrefix, err))
		} else {
			c.Output.MaxItems = n
		}
	}
	if v, ok := lookup(EnvPrefix + "PAGE_SIZE_HINT"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_SIZE_HINT: %w", EnvPrefix, err))
		} else {
			c.Cosmos.PageSizeHint = int32(n)
		}
	}

	return errors.Join(errs...)
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error

	if err := c.Cosmos.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !c.Cosmos.EnableCrossPartitionQuery && c.Cosmos.PartitionKey == "" {
		errs = append(errs, errors.New("partition_key is required when enable_cross_partition_query is false"))
	}
	if c.Output.MaxItems < 0 {
		errs = append(errs, errors.New("output.max_items must be non-negative"))
	}

	target, err := export.ParseTarget(c.Output.Target)
	if err != nil {
		errs = append(errs, err)
	}
	if target.Scheme == export.SchemeAzBlob && c.Output.AzureStorageConnectionString == "" {
		errs = append(errs, errors.New("output.azure_storage_connection_string is required for azblob targets"))
	}
	if target.Scheme == export.SchemeS3 && c.Output.S3.Region == "" {
		errs = append(errs, errors.New("output.s3.region is required for s3 targets"))
	}

	if _, err := logging.New(c.Log.Level, c.Log.Format); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
