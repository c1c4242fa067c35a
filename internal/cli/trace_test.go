package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracerProvider(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, TraceConfig{})
	require.NoError(t, err)
	assert.Nil(t, tp)

	tp, err = NewTracerProvider(ctx, TraceConfig{Endpoint: "http://127.0.0.1:4318", ServiceName: "arrayrel"})
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.NoError(t, tp.Shutdown(ctx))
}
