// Package export writes loaded documents as JSON Lines to local writers or object storage.
package export

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/Abraxas-365/cosmosloader/document"
	"github.com/Abraxas-365/cosmosloader/storage"
)

// ContentType of JSON Lines output
const ContentType = "application/x-ndjson"

var jsonl = jsoniter.Config{
	SortMapKeys: true,
	EscapeHTML:  false,
}.Froze()

// WriteJSONL writes one JSON object per document, each terminated by a newline
func WriteJSONL(w io.Writer, docs []document.Document) error {
	bw := bufio.NewWriter(w)
	stream := jsonl.BorrowStream(bw)
	defer jsonl.ReturnStream(stream)

	for _, doc := range docs {
		stream.WriteVal(doc)
		stream.WriteRaw("\n")
		if stream.Error != nil {
			return stream.Error
		}
		if err := stream.Flush(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Publish writes docs as JSON Lines under key.
// An existing object is kept and reported as ErrCodeAlreadyExists unless overwrite is set.
func Publish(ctx context.Context, store storage.DataStore, key string, docs []document.Document, overwrite bool) error {
	if !overwrite {
		exists, err := store.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return storage.NewStorageError("Publish", key, nil, storage.ErrCodeAlreadyExists,
				"object already exists, enable overwrite to replace it")
		}
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, docs); err != nil {
		return storage.NewStorageError("Publish", key, err, storage.ErrCodeInternal, "failed to encode documents")
	}

	metadata := map[string]string{"documents": strconv.Itoa(len(docs))}
	if len(docs) > 0 && docs[0].Source() != "" {
		metadata["source"] = docs[0].Source()
	}

	return store.Put(ctx, key, &buf, storage.WithContentType(ContentType), storage.WithMetadata(metadata))
}
