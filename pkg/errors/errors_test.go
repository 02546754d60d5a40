package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("product", "abc123")
		assert.Equal(t, "product with ID abc123 not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := errors.Join(errors.New("failed"), pkgerrors.NewNotFoundError("category", "gloves"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("max_items_db_call", 0, "must be positive")
		assert.Equal(t, "validation failed for field max_items_db_call: must be positive", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})
}

func TestFetchError(t *testing.T) {
	t.Run("status code", func(t *testing.T) {
		api := pkgerrors.NewAPIError("https://example.test/v2/products/gloves", 503, "service unavailable")
		err := &pkgerrors.FetchError{Kind: pkgerrors.FetchCategory, Name: "gloves", StatusCode: 503, Err: api}
		assert.Contains(t, err.Error(), "category gloves")
		assert.Contains(t, err.Error(), "503")
		assert.True(t, pkgerrors.IsFetchFailed(err))

		var target *pkgerrors.APIError
		assert.True(t, errors.As(err, &target))
		assert.Equal(t, 503, target.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		err := pkgerrors.NewFetchError(pkgerrors.FetchManufacturer, "abiplos", "",
			pkgerrors.NewTimeoutError("fetch", "10s", "deadline exceeded"))
		assert.True(t, pkgerrors.IsFetchFailed(err))
		assert.True(t, pkgerrors.IsTimeout(err))
		assert.Contains(t, err.Error(), "manufacturer abiplos")
	})

	t.Run("wrapped with fmt", func(t *testing.T) {
		err := fmt.Errorf("round 2: %w", pkgerrors.NewFetchError(pkgerrors.FetchCategory, "beanies", "", errors.New("boom")))
		assert.True(t, pkgerrors.IsFetchFailed(err))
		assert.False(t, pkgerrors.IsStore(err))
	})
}

func TestBatchError(t *testing.T) {
	err := pkgerrors.NewBatchError("update", 2, 5, errors.New("disk I/O error"))
	assert.Equal(t, "batch update failed at chunk 3/5: disk I/O error", err.Error())
	assert.True(t, pkgerrors.IsStore(err))
	assert.False(t, pkgerrors.IsFetchFailed(err))
}

func TestStoreError(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapStore("query", nil))

	err := pkgerrors.WrapStore("query", errors.New("database is locked"))
	assert.True(t, pkgerrors.IsStore(err))
	assert.Equal(t, "store query failed: database is locked", err.Error())
}

func TestConfigError(t *testing.T) {
	base := errors.New("unknown driver")
	err := pkgerrors.NewConfigError("database", "driver mysql not supported", base)
	assert.Equal(t, "configuration error in database: driver mysql not supported", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "/tmp/x", nil))
	assert.Nil(t, pkgerrors.WrapParse("json", "x.json", nil))

	ioErr := pkgerrors.WrapIO("rename", "/tmp/x.json", errors.New("permission denied"))
	assert.Contains(t, ioErr.Error(), "rename of /tmp/x.json")

	parseErr := pkgerrors.WrapParse("json", "gloves.json", errors.New("unexpected EOF"))
	assert.Equal(t, "parse error in json file gloves.json: unexpected EOF", parseErr.Error())
}

func TestSentinels(t *testing.T) {
	assert.True(t, pkgerrors.IsNoData(fmt.Errorf("products: %w", pkgerrors.ErrNoData)))
	assert.True(t, pkgerrors.IsCanceled(pkgerrors.ErrCanceled))
}
