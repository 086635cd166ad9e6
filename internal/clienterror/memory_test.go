package clienterror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		e := &ClientError{Type: "TypeError", Message: msg}
		require.NoError(t, repo.Append(ctx, e))
		assert.NotEmpty(t, e.ID)
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Message)
	assert.Equal(t, "second", list[1].Message)

	all, err := repo.List(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
