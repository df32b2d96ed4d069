package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	_, ok = UserID(WithUserID(context.Background(), 0))
	assert.False(t, ok)

	id, ok := UserID(WithUserID(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
}
