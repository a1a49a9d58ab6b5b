package cosmos

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/Abraxas-365/cosmosloader/cosmosdb"
	"github.com/Abraxas-365/cosmosloader/datasource"
)

// NewClientFactory returns a cosmosdb.ClientFactory backed by the Azure SDK.
// opts may be nil.
func NewClientFactory(opts *azcosmos.ClientOptions) cosmosdb.ClientFactory {
	return func(connStr string) (cosmosdb.Client, error) {
		c, err := azcosmos.NewClientFromConnectionString(connStr, opts)
		if err != nil {
			return nil, err
		}
		return &Client{client: c}, nil
	}
}

// Client wraps *azcosmos.Client
type Client struct {
	client *azcosmos.Client
}

// Database returns the handle of database id
func (c *Client) Database(id string) (cosmosdb.DatabaseClient, error) {
	db, err := c.client.NewDatabase(id)
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

// Database wraps *azcosmos.DatabaseClient
type Database struct {
	db *azcosmos.DatabaseClient
}

// Container returns the handle of container id
func (d *Database) Container(id string) (cosmosdb.ContainerClient, error) {
	c, err := d.db.NewContainer(id)
	if err != nil {
		return nil, err
	}
	return &Container{container: c}, nil
}

// Container wraps *azcosmos.ContainerClient
type Container struct {
	container *azcosmos.ContainerClient
}

// QueryItems starts a query pager. No request is sent before the first NextPage.
func (c *Container) QueryItems(query string, opts cosmosdb.QueryOptions) cosmosdb.ItemPager {
	pk, err := partitionKey(opts)
	if err != nil {
		return &failedPager{err: err}
	}
	return &pager{pager: c.container.NewQueryItemsPager(query, pk, queryOptions(opts))}
}

// partitionKey returns the empty partition key for cross-partition queries,
// which makes the SDK fan the query out over every partition.
func partitionKey(opts cosmosdb.QueryOptions) (azcosmos.PartitionKey, error) {
	if opts.EnableCrossPartitionQuery {
		return azcosmos.NewPartitionKey(), nil
	}
	if opts.PartitionKey == "" {
		return azcosmos.PartitionKey{}, datasource.NewDataSourceError("cosmosdb", "QueryItems", nil,
			datasource.ErrCodeInvalidConfig,
			"partition key is required when cross-partition queries are disabled")
	}
	return azcosmos.NewPartitionKeyString(opts.PartitionKey), nil
}

func queryOptions(opts cosmosdb.QueryOptions) *azcosmos.QueryOptions {
	qo := &azcosmos.QueryOptions{PageSizeHint: opts.PageSizeHint}
	for _, p := range opts.Parameters {
		qo.QueryParameters = append(qo.QueryParameters, azcosmos.QueryParameter{
			Name:  p.Name,
			Value: p.Value,
		})
	}
	return qo
}

type pager struct {
	pager *runtime.Pager[azcosmos.QueryItemsResponse]
}

func (p *pager) More() bool {
	return p.pager.More()
}

func (p *pager) NextPage(ctx context.Context) ([][]byte, error) {
	resp, err := p.pager.NextPage(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// failedPager reports err on its only page
type failedPager struct {
	err  error
	done bool
}

func (p *failedPager) More() bool {
	return !p.done
}

func (p *failedPager) NextPage(context.Context) ([][]byte, error) {
	p.done = true
	return nil, p.err
}
