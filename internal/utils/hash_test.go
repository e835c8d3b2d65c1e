package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerPasswordHash_Deterministic(t *testing.T) {
	a := ServerPasswordHash("client-hash", "stamp-1")
	b := ServerPasswordHash("client-hash", "stamp-1")

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestServerPasswordHash_StampChangesHash(t *testing.T) {
	a := ServerPasswordHash("client-hash", "stamp-1")
	b := ServerPasswordHash("client-hash", "stamp-2")

	assert.NotEqual(t, a, b, "rotating the stamp must invalidate the stored hash")
}

func TestVerifyPasswordHash(t *testing.T) {
	stored := ServerPasswordHash("client-hash", "stamp-1")

	assert.True(t, VerifyPasswordHash("client-hash", "stamp-1", stored))
	assert.False(t, VerifyPasswordHash("wrong-hash", "stamp-1", stored))
	assert.False(t, VerifyPasswordHash("client-hash", "stamp-2", stored))
}
