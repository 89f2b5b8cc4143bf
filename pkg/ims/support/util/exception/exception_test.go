package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
)

func TestStoreError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := exception.NewStoreError("ingest", "bulk load failed", cause, true)

	assert.Equal(t, "[ingest] bulk load failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.IsRetryable())

	bare := exception.NewStoreError("ledger", "job missing", nil, false)
	assert.Equal(t, "[ledger] job missing", bare.Error())
	assert.False(t, bare.IsRetryable())
}

func TestNewStoreErrorf(t *testing.T) {
	err := exception.NewStoreErrorf("ledger", "job %d is already %s", 7, "DONE")
	assert.Equal(t, "[ledger] job 7 is already DONE", err.Error())
	assert.False(t, err.IsRetryable())
}

func TestIsStoreError(t *testing.T) {
	err := exception.NewStoreError("repository", "query failed", nil, false)
	assert.True(t, exception.IsStoreError(err))
	assert.True(t, exception.IsStoreError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, exception.IsStoreError(errors.New("plain")))
	assert.False(t, exception.IsStoreError(nil))
}

func TestIsTemporary(t *testing.T) {
	assert.True(t, exception.IsTemporary(exception.NewStoreError("repository", "deadlock", nil, true)))
	assert.False(t, exception.IsTemporary(exception.NewStoreError("ingest", "bad record", nil, false)))
	assert.True(t, exception.IsTemporary(errors.New("dial tcp: connection refused")))
	assert.False(t, exception.IsTemporary(errors.New("syntax error")))
	assert.False(t, exception.IsTemporary(nil))
}

func TestIsOptimisticLockingFailure(t *testing.T) {
	err := exception.NewOptimisticLockingFailure("repository", "stale version", nil)
	assert.True(t, exception.IsOptimisticLockingFailure(err))
	assert.True(t, err.IsRetryable())
	assert.True(t, exception.IsOptimisticLockingFailure(fmt.Errorf("update failed: %w", err)))

	assert.False(t, exception.IsOptimisticLockingFailure(errors.New("other")))
	assert.False(t, exception.IsOptimisticLockingFailure(nil))

	// A wrapped cause survives alongside the sentinel.
	cause := errors.New("row changed")
	withCause := exception.NewOptimisticLockingFailure("repository", "stale version", cause)
	assert.True(t, exception.IsOptimisticLockingFailure(withCause))
	assert.ErrorIs(t, withCause, cause)
}

func TestExtractErrorMessage(t *testing.T) {
	err := exception.NewStoreError("ledger", "update conflicted", errors.New("noise"), true)
	assert.Equal(t, "update conflicted", exception.ExtractErrorMessage(err))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
}
