package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsIDAndTimestamp(t *testing.T) {
	rec := &CallRecord{RequestID: "req-1"}
	applyDefaults(rec)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestApplyDefaults_PreservesCallerValues(t *testing.T) {
	id := uuid.New()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &CallRecord{ID: id, CreatedAt: createdAt}

	applyDefaults(rec)

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, createdAt, rec.CreatedAt)
}

func TestNewRepository(t *testing.T) {
	r := NewRepository(nil, nil)
	assert.NotNil(t, r)
}
