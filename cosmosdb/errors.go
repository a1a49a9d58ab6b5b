package cosmosdb

import "github.com/Abraxas-365/cosmosloader/datasource"

const sourceName = "cosmosdb"

// ErrMissingFilterEngine is returned by NewLoader when no FilterEngine is given
var ErrMissingFilterEngine = datasource.NewDataSourceError(sourceName, "NewLoader", nil,
	datasource.ErrCodeMissingDependency,
	"filter engine not configured, install github.com/itchyny/gojq and pass adapters/gojq.NewEngine()")

// ErrMissingClient is returned by Load when no ClientFactory is configured
var ErrMissingClient = datasource.NewDataSourceError(sourceName, "Load", nil,
	datasource.ErrCodeMissingDependency,
	"cosmos client not configured, install github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos "+
		"and pass WithClientFactory(cosmos.NewClientFactory(nil))")
