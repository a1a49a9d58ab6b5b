// Command cosmosload runs a query against an Azure CosmosDB container and
// writes the extracted documents as JSON Lines.
//
// Usage:
//
//	cosmosload load --config cosmosload.yaml
//	cosmosload load --database support --container tickets \
//	    --query "SELECT * FROM c" --jq-schema ".body" --output s3://exports/tickets.jsonl
//	cosmosload version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Set at build time with -ldflags "-X main.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
