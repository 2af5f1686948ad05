package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	_, other := NewContext(context.Background())
	require.NotEqual(t, id, other)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}

func TestWithID(t *testing.T) {
	got, ok := FromContext(WithID(context.Background(), "abc"))
	require.True(t, ok)
	require.Equal(t, "abc", got)

	_, ok = FromContext(WithID(context.Background(), ""))
	require.False(t, ok)
}

func TestWithOperation(t *testing.T) {
	ctx, rid := NewContext(context.Background())
	ctx, op := WithOperation(ctx)

	got, ok := OperationFrom(ctx)
	require.True(t, ok)
	require.Equal(t, op, got)
	require.NotEqual(t, rid, op)

	still, _ := FromContext(ctx)
	require.Equal(t, rid, still)
}
