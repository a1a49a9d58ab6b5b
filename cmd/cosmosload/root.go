package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Abraxas-365/cosmosloader/adapters/azure/cosmos"
	"github.com/Abraxas-365/cosmosloader/adapters/gojq"
	"github.com/Abraxas-365/cosmosloader/config"
	"github.com/Abraxas-365/cosmosloader/cosmosdb"
	"github.com/Abraxas-365/cosmosloader/datasource"
	"github.com/Abraxas-365/cosmosloader/internal/logging"
)

// deps are the collaborators replaced in tests
type deps struct {
	clientFactory cosmosdb.ClientFactory
	openStore     storeOpener
	newLogger     func(level, format string) (*zap.Logger, error)
}

func defaultDeps() deps {
	return deps{
		clientFactory: cosmos.NewClientFactory(nil),
		openStore:     openStore,
		newLogger:     logging.New,
	}
}

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "cosmosload",
		Short:         "Load documents from an Azure CosmosDB container",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoadCmd(d), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cosmosload %s (%s)\n", Version, GitCommit)
		},
	}
}

type loadFlags struct {
	configPath       string
	connectionString string
	database         string
	container        string
	query            string
	jqSchema         string
	crossPartition   bool
	textContent      bool
	partitionKey     string
	pageSizeHint     int32
	output           string
	overwrite        bool
	maxItems         int
	logLevel         string
	logFormat        string
}

func newLoadCmd(d deps) *cobra.Command {
	f := &loadFlags{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run the query and export the extracted documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			applyFlags(cfg, cmd.Flags(), f)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runLoad(cmd.Context(), cmd.OutOrStdout(), cfg, d)
		},
	}

	defaults := config.Default()
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	fs.StringVar(&f.connectionString, "connection-string", "", "CosmosDB account connection string")
	fs.StringVar(&f.database, "database", "", "database id")
	fs.StringVar(&f.container, "container", "", "container id")
	fs.StringVarP(&f.query, "query", "q", "", "CosmosDB SQL query")
	fs.StringVar(&f.jqSchema, "jq-schema", defaults.Cosmos.JQSchema, "jq expression extracting samples from every item")
	fs.BoolVar(&f.crossPartition, "cross-partition", defaults.Cosmos.EnableCrossPartitionQuery, "enable cross-partition queries")
	fs.BoolVar(&f.textContent, "text-content", defaults.Cosmos.TextContent, "require every sample to be a string")
	fs.StringVar(&f.partitionKey, "partition-key", "", "partition key value used when cross-partition queries are disabled")
	fs.Int32Var(&f.pageSizeHint, "page-size", 0, "maximum items per query page (0 lets the service decide)")
	fs.StringVarP(&f.output, "output", "o", defaults.Output.Target, "output: -, a file path, s3://bucket/key or azblob://container/blob")
	fs.BoolVar(&f.overwrite, "overwrite", false, "replace an existing output object")
	fs.IntVar(&f.maxItems, "max-items", 0, "stop after this many documents (0 for no limit)")
	fs.StringVar(&f.logLevel, "log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", defaults.Log.Format, "log format: json, console")

	return cmd
}

// applyFlags overlays the flags set explicitly on the command line
func applyFlags(cfg *config.Config, fs *pflag.FlagSet, f *loadFlags) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("connection-string", func() { cfg.Cosmos.ConnectionString = f.connectionString })
	set("database", func() { cfg.Cosmos.Database = f.database })
	set("container", func() { cfg.Cosmos.Container = f.container })
	set("query", func() { cfg.Cosmos.Query = f.query })
	set("jq-schema", func() { cfg.Cosmos.JQSchema = f.jqSchema })
	set("cross-partition", func() { cfg.Cosmos.EnableCrossPartitionQuery = f.crossPartition })
	set("text-content", func() { cfg.Cosmos.TextContent = f.textContent })
	set("partition-key", func() { cfg.Cosmos.PartitionKey = f.partitionKey })
	set("page-size", func() { cfg.Cosmos.PageSizeHint = f.pageSizeHint })
	set("output", func() { cfg.Output.Target = f.output })
	set("overwrite", func() { cfg.Output.Overwrite = f.overwrite })
	set("max-items", func() { cfg.Output.MaxItems = f.maxItems })
	set("log-level", func() { cfg.Log.Level = f.logLevel })
	set("log-format", func() { cfg.Log.Format = f.logFormat })
}

func runLoad(ctx context.Context, stdout io.Writer, cfg *config.Config, d deps) error {
	logger, err := d.newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loader, err := cosmosdb.NewLoader(cfg.Cosmos, gojq.NewEngine(),
		cosmosdb.WithClientFactory(d.clientFactory),
		cosmosdb.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	docs, err := loader.Load(ctx, datasource.WithMaxItems(cfg.Output.MaxItems))
	if err != nil {
		return err
	}

	target, err := writeOutput(ctx, stdout, cfg.Output, docs, d.openStore)
	if err != nil {
		return err
	}

	logger.Info("documents exported",
		zap.String("source", loader.Source()),
		zap.String("output", target.String()),
		zap.Int("documents", len(docs)),
	)
	return nil
}
