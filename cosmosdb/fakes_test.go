package cosmosdb_test

import (
	"context"
	"errors"

	"github.com/Abraxas-365/cosmosloader/cosmosdb"
)

type fakeClient struct {
	databases map[string]*fakeDatabase
}

func (c *fakeClient) Database(id string) (cosmosdb.DatabaseClient, error) {
	db, ok := c.databases[id]
	if !ok {
		return nil, errors.New("database not found: " + id)
	}
	return db, nil
}

type fakeDatabase struct {
	containers map[string]*fakeContainer
}

func (d *fakeDatabase) Container(id string) (cosmosdb.ContainerClient, error) {
	c, ok := d.containers[id]
	if !ok {
		return nil, errors.New("container not found: " + id)
	}
	return c, nil
}

type fakeContainer struct {
	pages   [][][]byte
	pageErr error
	// failAt is the index of the page whose fetch returns pageErr
	failAt int

	queries []string
	opts    []cosmosdb.QueryOptions
}

func (c *fakeContainer) QueryItems(query string, opts cosmosdb.QueryOptions) cosmosdb.ItemPager {
	c.queries = append(c.queries, query)
	c.opts = append(c.opts, opts)
	return &fakePager{container: c}
}

type fakePager struct {
	container *fakeContainer
	next      int
}

func (p *fakePager) More() bool {
	return p.next < len(p.container.pages)
}

func (p *fakePager) NextPage(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := p.next
	p.next++
	if p.container.pageErr != nil && i == p.container.failAt {
		return nil, p.container.pageErr
	}
	return p.container.pages[i], nil
}

// newFakeFactory serves container "items" of database "db"
func newFakeFactory(container *fakeContainer) (cosmosdb.ClientFactory, *[]string) {
	var connStrs []string
	factory := func(connStr string) (cosmosdb.Client, error) {
		connStrs = append(connStrs, connStr)
		return &fakeClient{databases: map[string]*fakeDatabase{
			"db": {containers: map[string]*fakeContainer{"items": container}},
		}}, nil
	}
	return factory, &connStrs
}

func page(items ...string) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = []byte(item)
	}
	return out
}
