package gojq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/cosmosloader/datasource"
)

func TestEngine_Compile(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		input   interface{}
		want    []interface{}
		wantErr bool
	}{
		{
			name:  "identity",
			expr:  ".",
			input: map[string]interface{}{"a": "x"},
			want:  []interface{}{map[string]interface{}{"a": "x"}},
		},
		{
			name:  "iterate values",
			expr:  ".[]",
			input: map[string]interface{}{"a": "x", "b": "y"},
			want:  []interface{}{"x", "y"},
		},
		{
			name:  "field access",
			expr:  ".body.text",
			input: map[string]interface{}{"body": map[string]interface{}{"text": "hello"}},
			want:  []interface{}{"hello"},
		},
		{
			name:  "empty",
			expr:  "empty",
			input: map[string]interface{}{"a": "x"},
			want:  nil,
		},
		{
			name:  "select drops non matching",
			expr:  "select(.kind == \"note\") | .text",
			input: map[string]interface{}{"kind": "task", "text": "t"},
			want:  nil,
		},
		{
			name:    "runtime error",
			expr:    ".[0]",
			input:   map[string]interface{}{"a": "x"},
			wantErr: true,
		},
	}

	engine := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := engine.Compile(tt.expr)
			require.NoError(t, err)

			got, err := prog.Run(context.Background(), tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_CompileInvalidExpression(t *testing.T) {
	_, err := NewEngine().Compile(".[")

	require.Error(t, err)
	assert.True(t, datasource.IsCode(err, datasource.ErrCodeInvalidFormat))
	assert.Contains(t, err.Error(), `".["`)
}

func TestEngine_UndefinedVariable(t *testing.T) {
	_, err := NewEngine().Compile(".[$field]")

	require.Error(t, err)
	assert.True(t, datasource.IsCode(err, datasource.ErrCodeInvalidFormat))
}

func TestEngine_WithVariable(t *testing.T) {
	engine := NewEngine(WithVariable("$field", "title"), WithVariable("suffix", "!"))

	prog, err := engine.Compile(".[$field] + $suffix")
	require.NoError(t, err)

	got, err := prog.Run(context.Background(), map[string]interface{}{"title": "hi"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"hi!"}, got)
}

func TestEngine_HaltStopsWithoutError(t *testing.T) {
	prog, err := NewEngine().Compile(".a, halt, .b")
	require.NoError(t, err)

	got, err := prog.Run(context.Background(), map[string]interface{}{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x"}, got)
}

func TestEngine_ContextCanceled(t *testing.T) {
	prog, err := NewEngine().Compile("range(1e9)")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = prog.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
