package cosmosdb

import "context"

// FilterEngine compiles jq-style filter expressions
type FilterEngine interface {
	Compile(expr string) (Program, error)
}

// Program is a compiled filter expression.
// Run evaluates it against one parsed JSON value and returns every result, possibly none.
type Program interface {
	Run(ctx context.Context, input interface{}) ([]interface{}, error)
}
