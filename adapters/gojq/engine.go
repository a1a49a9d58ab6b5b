package gojq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/Abraxas-365/cosmosloader/cosmosdb"
	"github.com/Abraxas-365/cosmosloader/datasource"
)

var _ cosmosdb.FilterEngine = (*Engine)(nil)

// Engine compiles jq filter expressions with gojq
type Engine struct {
	variables map[string]interface{}
}

// Option configures an Engine
type Option func(*Engine)

// WithVariable binds $name to value in every compiled expression
func WithVariable(name string, value interface{}) Option {
	return func(e *Engine) {
		e.variables[strings.TrimPrefix(name, "$")] = value
	}
}

// NewEngine creates a gojq backed filter engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{variables: make(map[string]interface{})}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile parses and compiles expr
func (e *Engine) Compile(expr string) (cosmosdb.Program, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, datasource.NewDataSourceError("gojq", "Compile", err, datasource.ErrCodeInvalidFormat,
			fmt.Sprintf("failed to parse jq expression %q", expr))
	}

	names := make([]string, 0, len(e.variables))
	for name := range e.variables {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]interface{}, len(names))
	vars := make([]string, len(names))
	for i, name := range names {
		vars[i] = "$" + name
		values[i] = e.variables[name]
	}

	code, err := gojq.Compile(query, gojq.WithVariables(vars))
	if err != nil {
		return nil, datasource.NewDataSourceError("gojq", "Compile", err, datasource.ErrCodeInvalidFormat,
			fmt.Sprintf("failed to compile jq expression %q", expr))
	}

	return &program{code: code, values: values}, nil
}

type program struct {
	code   *gojq.Code
	values []interface{}
}

// Run collects every value the expression emits for input
func (p *program) Run(ctx context.Context, input interface{}) ([]interface{}, error) {
	var results []interface{}

	iter := p.code.RunWithContext(ctx, input, p.values...)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, err
		}
		results = append(results, v)
	}

	return results, nil
}
