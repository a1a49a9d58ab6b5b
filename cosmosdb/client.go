package cosmosdb

import "context"

// ClientFactory opens a CosmosDB client from an account connection string
type ClientFactory func(connStr string) (Client, error)

// Client is the account-level handle of a CosmosDB client
type Client interface {
	Database(id string) (DatabaseClient, error)
}

// DatabaseClient resolves containers of one database
type DatabaseClient interface {
	Container(id string) (ContainerClient, error)
}

// ContainerClient runs queries against one container
type ContainerClient interface {
	// QueryItems returns a pager over the raw JSON payloads matched by query.
	// Fan-out across partitions is entirely up to the implementation.
	QueryItems(query string, opts QueryOptions) ItemPager
}

// ItemPager iterates over the pages of a query result
type ItemPager interface {
	More() bool
	NextPage(ctx context.Context) ([][]byte, error)
}

// QueryParameter binds a named parameter (e.g. "@status") in the query text
type QueryParameter struct {
	Name  string      `yaml:"name" json:"name"`
	Value interface{} `yaml:"value" json:"value"`
}

// QueryOptions holds the per-query settings forwarded to the client
type QueryOptions struct {
	EnableCrossPartitionQuery bool
	// PartitionKey scopes the query when cross-partition queries are disabled
	PartitionKey string
	Parameters   []QueryParameter
	PageSizeHint int32
}
