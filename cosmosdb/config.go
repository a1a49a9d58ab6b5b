package cosmosdb

import (
	"errors"
	"strings"

	"github.com/Abraxas-365/cosmosloader/datasource"
)

// Config holds the connection and extraction settings of a Loader
type Config struct {
	ConnectionString string `yaml:"connection_string"`
	Database         string `yaml:"database"`
	Container        string `yaml:"container"`
	Query            string `yaml:"query"`
	// JQSchema is the filter expression applied to every item
	JQSchema                  string `yaml:"jq_schema"`
	EnableCrossPartitionQuery bool   `yaml:"enable_cross_partition_query"`
	// TextContent requires every sample to be a string
	TextContent  bool             `yaml:"text_content"`
	PartitionKey string           `yaml:"partition_key"`
	Parameters   []QueryParameter `yaml:"parameters"`
	PageSizeHint int32            `yaml:"page_size_hint"`
}

// DefaultConfig returns a Config with cross-partition queries and text mode enabled
func DefaultConfig() Config {
	return Config{
		JQSchema:                  ".",
		EnableCrossPartitionQuery: true,
		TextContent:               true,
	}
}

// Validate checks that every required field is set
func (c Config) Validate() error {
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"connection string", c.ConnectionString},
		{"database", c.Database},
		{"container", c.Container},
		{"query", c.Query},
		{"jq schema", c.JQSchema},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, errors.New(r.name+" is required"))
		}
	}
	if c.PageSizeHint < 0 {
		errs = append(errs, errors.New("page size hint must be non-negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return datasource.NewDataSourceError(sourceName, "Validate", err, datasource.ErrCodeInvalidConfig,
			"invalid loader configuration")
	}
	return nil
}

func (c Config) queryOptions() QueryOptions {
	params := make([]QueryParameter, len(c.Parameters))
	copy(params, c.Parameters)

	return QueryOptions{
		EnableCrossPartitionQuery: c.EnableCrossPartitionQuery,
		PartitionKey:              c.PartitionKey,
		Parameters:                params,
		PageSizeHint:              c.PageSizeHint,
	}
}
