package errors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	err := Newf("list %d is already closed", 42).
		Category(CategoryConflict).
		Component("ledger").
		Context("list_id", 42).
		Build()

	assert.Equal(t, "list 42 is already closed", err.Error())
	assert.Equal(t, "conflict", err.GetCategory())
	assert.Equal(t, "ledger", err.GetComponent())
	assert.False(t, err.GetTimestamp().IsZero())

	ctx := err.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, 42, ctx["list_id"])
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	validation := ValidationError("count must be at least 1")
	notFound := NotFoundError("species not found")
	conflict := ConflictError("list is already closed")

	assert.True(t, IsValidation(validation))
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsConflict(conflict))

	assert.False(t, IsNotFound(validation))
	assert.False(t, IsConflict(notFound))
	assert.False(t, IsValidation(nil))
}

func TestUnwrapPreservesOriginal(t *testing.T) {
	t.Parallel()

	original := NewStd("boom")
	wrapped := New(original).Category(CategoryDatabase).Build()

	assert.True(t, Is(wrapped, original))
	assert.Equal(t, original, Unwrap(wrapped))
}

func TestCategoryDetectionFromMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		expected ErrorCategory
	}{
		{"not found", "observation 7 not found", CategoryNotFound},
		{"validation", "invalid latitude", CategoryValidation},
		{"conflict", "list already closed", CategoryConflict},
		{"timeout", "context deadline exceeded: timeout", CategoryTimeout},
		{"generic", "something odd happened", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Newf("%s", tt.message).Build()
			assert.Equal(t, tt.expected, err.Category)
		})
	}
}

func TestContextCopyIsIsolated(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Context("key", "value").Build()

	ctx := err.GetContext()
	ctx["key"] = "mutated"

	assert.Equal(t, "value", err.GetContext()["key"])
}

func TestTimingContext(t *testing.T) {
	t.Parallel()

	err := Newf("request failed").
		Category(CategoryNetwork).
		Timing("photo-fetch", 1500*time.Millisecond).
		Build()

	ctx := err.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "photo-fetch", ctx["operation"])
	assert.Equal(t, int64(1500), ctx["duration_ms"])
}

func TestPriorityValidation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PriorityHigh, Newf("x").Priority(PriorityHigh).Build().GetPriority())
	// Unknown values fall back to medium
	assert.Equal(t, PriorityMedium, Newf("x").Priority("urgent").Build().GetPriority())
	assert.Empty(t, Newf("x").Build().GetPriority())
}
