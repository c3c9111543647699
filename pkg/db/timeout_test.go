package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout(t *testing.T) {
	t.Run("applies timeout without caller deadline", func(t *testing.T) {
		ctx, cancel := WithTimeout(context.Background(), time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	})

	t.Run("keeps sooner caller deadline", func(t *testing.T) {
		parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancelParent()
		want, _ := parent.Deadline()

		ctx, cancel := WithTimeout(parent, time.Hour)
		defer cancel()

		got, ok := ctx.Deadline()
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("zero timeout only cancels", func(t *testing.T) {
		ctx, cancel := WithTimeout(context.Background(), 0)
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		cancel()
		assert.Error(t, ctx.Err())
	})
}
