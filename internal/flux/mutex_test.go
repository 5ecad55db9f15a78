package flux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeMutexReentrancy(t *testing.T) {
	m := NewScopeMutex()

	require.NoError(t, m.TryLockScope("scan"))

	err := m.TryLockScope("scan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReentrancy))

	var reentrancy *ReentrancyError
	require.True(t, errors.As(err, &reentrancy))
	assert.Equal(t, "scan", reentrancy.Scope)
	assert.Contains(t, reentrancy.HolderStack, "TestScopeMutexReentrancy")

	m.UnlockScope("scan")
	assert.NoError(t, m.TryLockScope("scan"))
}

func TestScopeMutexDefaultScope(t *testing.T) {
	m := NewScopeMutex()

	require.NoError(t, m.TryLockScope(""))
	assert.True(t, m.IsLocked(DefaultScope))

	err := m.TryLockScope(DefaultScope)
	assert.ErrorIs(t, err, ErrReentrancy)

	m.UnlockScope(DefaultScope)
	assert.False(t, m.IsLocked(""))
}

func TestScopeMutexUnlockIsIdempotent(t *testing.T) {
	m := NewScopeMutex()

	assert.NotPanics(t, func() {
		m.UnlockScope("never-locked")
		m.UnlockScope("never-locked")
	})
	assert.NoError(t, m.TryLockScope("never-locked"))
}

func TestScopeMutexScopesAreIndependent(t *testing.T) {
	m := NewScopeMutex()

	require.NoError(t, m.TryLockScope("a"))
	assert.NoError(t, m.TryLockScope("b"))
	assert.ErrorIs(t, m.TryLockScope("a"), ErrReentrancy)
}

func TestScopeMutexInstancesAreIsolated(t *testing.T) {
	first := NewScopeMutex()
	second := NewScopeMutex()

	require.NoError(t, first.TryLockScope("shared"))
	assert.NoError(t, second.TryLockScope("shared"))
}
