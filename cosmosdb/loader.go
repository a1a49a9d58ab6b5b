package cosmosdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Abraxas-365/cosmosloader/datasource"
	"github.com/Abraxas-365/cosmosloader/document"
)

// itemJSON keeps numbers as json.Number so integers beyond 2^53 reach the
// filter exactly.
var itemJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

var (
	_ datasource.DataSource = (*Loader)(nil)
	_ datasource.Streamer   = (*Loader)(nil)
)

// Loader loads documents from a CosmosDB container.
// It is safe for concurrent use; every call opens its own client.
type Loader struct {
	cfg           Config
	program       Program
	clientFactory ClientFactory
	logger        *zap.Logger
	source        string
}

// NewLoader validates cfg and compiles its filter expression with engine
func NewLoader(cfg Config, engine FilterEngine, opts ...Option) (*Loader, error) {
	if engine == nil {
		return nil, ErrMissingFilterEngine
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	program, err := engine.Compile(cfg.JQSchema)
	if err != nil {
		return nil, err
	}

	cfg.Parameters = append([]QueryParameter(nil), cfg.Parameters...)
	l := &Loader{
		cfg:     cfg,
		program: program,
		logger:  zap.NewNop(),
		source:  fmt.Sprintf("cosmosdb://%s/%s", cfg.Database, cfg.Container),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Source returns the value stored in the source metadata of every document
func (l *Loader) Source() string {
	return l.source
}

// Load runs the query and returns every extracted document.
// On error no documents are returned.
func (l *Loader) Load(ctx context.Context, opts ...datasource.Option) ([]document.Document, error) {
	documents := make([]document.Document, 0)
	err := l.run(ctx, datasource.ApplyOptions(opts...), func(doc document.Document) error {
		documents = append(documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// Stream runs the query in the background and sends documents as they are extracted
func (l *Loader) Stream(ctx context.Context, opts ...datasource.Option) (<-chan document.Document, <-chan error) {
	docChan := make(chan document.Document)
	errChan := make(chan error, 1)
	options := datasource.ApplyOptions(opts...)

	go func() {
		defer close(docChan)
		defer close(errChan)

		err := l.run(ctx, options, func(doc document.Document) error {
			select {
			case docChan <- doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errChan <- err
		}
	}()

	return docChan, errChan
}

func (l *Loader) run(ctx context.Context, options *datasource.LoadOptions, emit func(document.Document) error) error {
	logger := l.logger.With(
		zap.String("load_id", uuid.NewString()),
		zap.String("database", l.cfg.Database),
		zap.String("container", l.cfg.Container),
	)

	if l.clientFactory == nil {
		return ErrMissingClient
	}

	client, err := l.clientFactory(l.cfg.ConnectionString)
	if err != nil {
		logger.Error("failed to open cosmos client", zap.Error(err))
		return err
	}
	database, err := client.Database(l.cfg.Database)
	if err != nil {
		logger.Error("failed to resolve database", zap.Error(err))
		return err
	}
	container, err := database.Container(l.cfg.Container)
	if err != nil {
		logger.Error("failed to resolve container", zap.Error(err))
		return err
	}

	logger.Info("querying items",
		zap.String("query", l.cfg.Query),
		zap.Bool("cross_partition", l.cfg.EnableCrossPartitionQuery),
	)

	pager := container.QueryItems(l.cfg.Query, l.cfg.queryOptions())
	var items, seqNum, emitted int

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			logger.Error("failed to fetch query page", zap.Int("items", items), zap.Error(err))
			return err
		}

		for _, item := range page {
			items++

			samples, err := l.extract(ctx, item)
			if err != nil {
				logger.Error("failed to extract item", zap.Int("item", items), zap.Error(err))
				return err
			}
			if len(samples) == 0 {
				logger.Debug("filter produced no samples", zap.Int("item", items))
			}

			for _, sample := range samples {
				seqNum++
				text, err := sample.Text(l.cfg.TextContent)
				if err != nil {
					return err
				}

				doc := document.New(text, l.source, seqNum)
				if !options.Keep(doc.Metadata) {
					continue
				}
				if err := emit(doc); err != nil {
					return err
				}
				emitted++

				if options.Full(emitted) {
					logger.Info("load stopped at max items",
						zap.Int("items", items), zap.Int("documents", emitted))
					return nil
				}
			}
		}
	}

	logger.Info("load finished", zap.Int("items", items), zap.Int("documents", emitted))
	return nil
}

func (l *Loader) extract(ctx context.Context, item []byte) ([]Sample, error) {
	var value interface{}
	if err := itemJSON.Unmarshal(item, &value); err != nil {
		return nil, err
	}

	results, err := l.program.Run(ctx, value)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, len(results))
	for i, r := range results {
		samples[i] = NewSample(r)
	}
	return samples, nil
}
