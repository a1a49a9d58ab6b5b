package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3storage "github.com/Abraxas-365/cosmosloader/adapters/aws/s3/s3storage"
	"github.com/Abraxas-365/cosmosloader/adapters/azure/blobstorage"
	"github.com/Abraxas-365/cosmosloader/config"
	"github.com/Abraxas-365/cosmosloader/document"
	"github.com/Abraxas-365/cosmosloader/export"
	"github.com/Abraxas-365/cosmosloader/storage"
)

// storeOpener returns the object store serving an s3:// or azblob:// target
type storeOpener func(ctx context.Context, cfg config.OutputConfig, target export.Target) (storage.DataStore, error)

func openStore(_ context.Context, cfg config.OutputConfig, target export.Target) (storage.DataStore, error) {
	switch target.Scheme {
	case export.SchemeS3:
		opts := s3.Options{
			Region:       cfg.S3.Region,
			UsePathStyle: cfg.S3.UsePathStyle,
		}
		if cfg.S3.AccessKeyID != "" {
			opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")
		}
		if cfg.S3.Endpoint != "" {
			opts.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		return s3storage.NewS3Store(s3.New(opts), target.Bucket), nil
	case export.SchemeAzBlob:
		return blobstorage.NewBlobStoreFromConnectionString(cfg.AzureStorageConnectionString, target.Bucket)
	}
	return nil, fmt.Errorf("no object store for output %s", target)
}

func writeOutput(ctx context.Context, stdout io.Writer, cfg config.OutputConfig, docs []document.Document, open storeOpener) (export.Target, error) {
	target, err := export.ParseTarget(cfg.Target)
	if err != nil {
		return target, err
	}

	switch target.Scheme {
	case export.SchemeStdout:
		return target, export.WriteJSONL(stdout, docs)
	case export.SchemeFile:
		return target, writeFile(target.Path, docs, cfg.Overwrite)
	default:
		store, err := open(ctx, cfg, target)
		if err != nil {
			return target, err
		}
		return target, export.Publish(ctx, store, target.Path, docs, cfg.Overwrite)
	}
}

func writeFile(path string, docs []document.Document, overwrite bool) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := export.WriteJSONL(w, docs); err != nil {
		return err
	}
	return w.Flush()
}
