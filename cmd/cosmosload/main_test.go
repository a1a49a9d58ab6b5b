package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abraxas-365/cosmosloader/config"
	"github.com/Abraxas-365/cosmosloader/cosmosdb"
	"github.com/Abraxas-365/cosmosloader/export"
	"github.com/Abraxas-365/cosmosloader/storage"
)

type stubClient struct{ items [][]byte }

func (c stubClient) Database(string) (cosmosdb.DatabaseClient, error)   { return c, nil }
func (c stubClient) Container(string) (cosmosdb.ContainerClient, error) { return c, nil }
func (c stubClient) QueryItems(string, cosmosdb.QueryOptions) cosmosdb.ItemPager {
	return &stubPager{items: c.items}
}

type stubPager struct {
	items [][]byte
	done  bool
}

func (p *stubPager) More() bool { return !p.done }
func (p *stubPager) NextPage(context.Context) ([][]byte, error) {
	p.done = true
	return p.items, nil
}

type memStore struct {
	objects map[string]string
}

func (m *memStore) Put(_ context.Context, key string, data io.Reader, _ ...storage.PutOption) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[key] = string(raw)
	return nil
}

func (m *memStore) Get(context.Context, string) (io.ReadCloser, error) { return nil, errors.New("unused") }
func (m *memStore) Delete(context.Context, string) error               { return nil }
func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func testDeps(items ...string) (deps, *memStore) {
	raw := make([][]byte, len(items))
	for i, item := range items {
		raw[i] = []byte(item)
	}
	store := &memStore{objects: map[string]string{}}
	return deps{
		clientFactory: func(string) (cosmosdb.Client, error) { return stubClient{items: raw}, nil },
		openStore: func(context.Context, config.OutputConfig, export.Target) (storage.DataStore, error) {
			return store, nil
		},
		newLogger: func(string, string) (*zap.Logger, error) { return zap.NewNop(), nil },
	}, store
}

var baseArgs = []string{
	"load",
	"--connection-string", "AccountEndpoint=https://localhost:8081/;AccountKey=a2V5;",
	"--database", "support",
	"--container", "tickets",
	"--query", "SELECT * FROM c",
}

func execute(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(d)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadCommand_Stdout(t *testing.T) {
	d, _ := testDeps(`{"body": "first"}`, `{"body": "second"}`)

	out, err := execute(t, d, append(baseArgs, "--jq-schema", ".body")...)
	require.NoError(t, err)

	assert.Equal(t,
		`{"page_content":"first","metadata":{"seq_num":1,"source":"cosmosdb://support/tickets"}}`+"\n"+
			`{"page_content":"second","metadata":{"seq_num":2,"source":"cosmosdb://support/tickets"}}`+"\n",
		out)
}

func TestLoadCommand_TextContentMismatch(t *testing.T) {
	d, _ := testDeps(`{"n": 1}`)

	_, err := execute(t, d, append(baseArgs, "--jq-schema", ".n")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set TextContent to false")

	out, err := execute(t, d, append(baseArgs, "--jq-schema", ".n", "--text-content=false")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"page_content":"1"`)
}

func TestLoadCommand_MaxItems(t *testing.T) {
	d, _ := testDeps(`{"v": ["a", "b", "c"]}`)

	out, err := execute(t, d, append(baseArgs, "--jq-schema", ".v[]", "--max-items", "2")...)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLoadCommand_FileOutput(t *testing.T) {
	d, _ := testDeps(`{"body": "x"}`)
	path := filepath.Join(t.TempDir(), "nested", "docs.jsonl")

	out, err := execute(t, d, append(baseArgs, "--jq-schema", ".body", "--output", path)...)
	require.NoError(t, err)
	assert.Empty(t, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"page_content":"x"`)

	_, err = execute(t, d, append(baseArgs, "--jq-schema", ".body", "--output", path)...)
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = execute(t, d, append(baseArgs, "--jq-schema", ".body", "--output", path, "--overwrite")...)
	assert.NoError(t, err)
}

func TestLoadCommand_ObjectStoreOutput(t *testing.T) {
	d, store := testDeps(`{"body": "x"}`)

	_, err := execute(t, d, append(baseArgs, "--jq-schema", ".body", "--output", "s3://exports/docs.jsonl")...)
	require.NoError(t, err)
	assert.Contains(t, store.objects["docs.jsonl"], `"page_content":"x"`)

	_, err = execute(t, d, append(baseArgs, "--jq-schema", ".body", "--output", "s3://exports/docs.jsonl")...)
	var sErr *storage.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, storage.ErrCodeAlreadyExists, sErr.Code)
}

func TestLoadCommand_InvalidConfig(t *testing.T) {
	d, _ := testDeps()

	_, err := execute(t, d, "load", "--database", "support")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container is required")
}

func TestLoadCommand_ConfigFileAndFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cosmosload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cosmos:
  connection_string: "AccountEndpoint=https://localhost:8081/;AccountKey=a2V5;"
  database: fromfile
  container: tickets
  query: "SELECT * FROM c"
  jq_schema: ".title"
`), 0o600))

	d, _ := testDeps(`{"title": "t", "body": "b"}`)

	out, err := execute(t, d, "load", "--config", path, "--database", "fromflag")
	require.NoError(t, err)
	assert.Contains(t, out, `"page_content":"t"`)
	assert.Contains(t, out, "cosmosdb://fromflag/tickets")
}

func TestVersionCommand(t *testing.T) {
	d, _ := testDeps()

	out, err := execute(t, d, "version")
	require.NoError(t, err)
	assert.Equal(t, "cosmosload dev (unknown)\n", out)
}

func TestOpenStore(t *testing.T) {
	cfg := config.Default().Output
	cfg.S3.AccessKeyID = "AKID"
	cfg.S3.SecretAccessKey = "secret"
	cfg.S3.Endpoint = "http://localhost:9000"

	store, err := openStore(context.Background(), cfg, export.Target{Scheme: export.SchemeS3, Bucket: "b", Path: "k"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = openStore(context.Background(), cfg, export.Target{Scheme: export.SchemeAzBlob, Bucket: "c", Path: "k"})
	assert.Error(t, err, "empty connection string")

	_, err = openStore(context.Background(), cfg, export.Target{Scheme: export.SchemeFile, Path: "k"})
	assert.Error(t, err)
}
