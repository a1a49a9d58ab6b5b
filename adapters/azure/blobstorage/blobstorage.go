package blobstorage

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/Abraxas-365/cosmosloader/storage"
)

var _ storage.DataStore = (*BlobStore)(nil)

// API is the subset of Blob Storage operations used by BlobStore
type API interface {
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
	DeleteBlob(ctx context.Context, containerName, blobName string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error)
	GetProperties(ctx context.Context, containerName, blobName string) (blob.GetPropertiesResponse, error)
}

// WrapClient adapts *azblob.Client to API
func WrapClient(client *azblob.Client) API {
	return &clientAPI{Client: client}
}

type clientAPI struct {
	*azblob.Client
}

func (c *clientAPI) GetProperties(ctx context.Context, containerName, blobName string) (blob.GetPropertiesResponse, error) {
	return c.ServiceClient().NewContainerClient(containerName).NewBlobClient(blobName).GetProperties(ctx, nil)
}

// BlobStore stores objects as block blobs of one container
type BlobStore struct {
	client    API
	container string
}

// NewBlobStore creates a BlobStore writing into container
func NewBlobStore(client API, container string) *BlobStore {
	return &BlobStore{
		client:    client,
		container: container,
	}
}

// NewBlobStoreFromConnectionString builds the Azure client from a storage account connection string
func NewBlobStoreFromConnectionString(connStr, container string) (*BlobStore, error) {
	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, storage.NewStorageError("Connect", "", err, storage.ErrCodeInvalidArgument, "invalid blob storage connection string")
	}
	return NewBlobStore(WrapClient(client), container), nil
}

func (s *BlobStore) Put(ctx context.Context, key string, data io.Reader, options ...storage.PutOption) error {
	opts := storage.ApplyPutOptions(options...)

	uploadOpts := &azblob.UploadStreamOptions{}
	if opts.ContentType != "" || opts.ContentEncoding != "" {
		headers := &blob.HTTPHeaders{}
		if opts.ContentType != "" {
			headers.BlobContentType = &opts.ContentType
		}
		if opts.ContentEncoding != "" {
			headers.BlobContentEncoding = &opts.ContentEncoding
		}
		uploadOpts.HTTPHeaders = headers
	}
	if len(opts.Metadata) > 0 {
		uploadOpts.Metadata = make(map[string]*string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			v := v
			uploadOpts.Metadata[k] = &v
		}
	}

	if _, err := s.client.UploadStream(ctx, s.container, key, data, uploadOpts); err != nil {
		return storage.NewStorageError("Put", key, err, errorCode(err), "failed to upload blob")
	}
	return nil
}

func (s *BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		code := errorCode(err)
		if code == storage.ErrCodeNotFound {
			return nil, storage.NewStorageError("Get", key, err, code, "blob not found")
		}
		return nil, storage.NewStorageError("Get", key, err, code, "failed to download blob")
	}
	return resp.Body, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, key, nil); err != nil {
		return storage.NewStorageError("Delete", key, err, errorCode(err), "failed to delete blob")
	}
	return nil
}

func (s *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.GetProperties(ctx, s.container, key)
	if err != nil {
		code := errorCode(err)
		if code == storage.ErrCodeNotFound {
			return false, nil
		}
		return false, storage.NewStorageError("Exists", key, err, code, "failed to check blob existence")
	}
	return true, nil
}

func errorCode(err error) string {
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		return storage.ErrCodeNotFound
	case bloberror.HasCode(err, bloberror.ContainerNotFound, bloberror.InvalidResourceName):
		return storage.ErrCodeInvalidArgument
	case bloberror.HasCode(err, bloberror.AuthorizationFailure, bloberror.AuthenticationFailed,
		bloberror.AuthorizationPermissionMismatch):
		return storage.ErrCodePermissionDenied
	case bloberror.HasCode(err, bloberror.BlobAlreadyExists):
		return storage.ErrCodeAlreadyExists
	}
	return storage.ErrCodeInternal
}
