package datasource

import (
	"context"

	"github.com/Abraxas-365/cosmosloader/document"
)

// DataSource represents a source of documents
type DataSource interface {
	// Load loads documents from the source
	Load(ctx context.Context, opts ...Option) ([]document.Document, error)
}

// Streamer is a DataSource that can also deliver documents as they are produced.
// The document channel is closed when the load ends; at most one error is sent.
type Streamer interface {
	DataSource
	Stream(ctx context.Context, opts ...Option) (<-chan document.Document, <-chan error)
}
