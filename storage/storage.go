package storage

import (
	"context"
	"io"
)

// DataStore represents the object storage operations used to publish loaded documents
type DataStore interface {
	Put(ctx context.Context, key string, data io.Reader, options ...PutOption) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOption allows customizing Put operations
type PutOption func(*PutOptions)

// PutOptions contains configuration for Put operations
type PutOptions struct {
	ContentType     string
	Metadata        map[string]string
	ContentEncoding string
}

// ApplyPutOptions builds PutOptions from options
func ApplyPutOptions(options ...PutOption) *PutOptions {
	opts := &PutOptions{}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

// WithContentType sets the content type for the object
func WithContentType(contentType string) PutOption {
	return func(o *PutOptions) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the object
func WithMetadata(metadata map[string]string) PutOption {
	return func(o *PutOptions) {
		o.Metadata = metadata
	}
}

// WithContentEncoding sets the Content-Encoding header for the object
func WithContentEncoding(contentEncoding string) PutOption {
	return func(o *PutOptions) {
		o.ContentEncoding = contentEncoding
	}
}
