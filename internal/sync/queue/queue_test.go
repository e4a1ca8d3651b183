package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/models"
)

func conflictFixture(id, recordID string) *models.ConflictRecord {
	return &models.ConflictRecord{
		ID:       id,
		Resource: "properties",
		Local:    models.Record{"id": recordID, "rent": 1000.0},
		Remote:   models.Record{"id": recordID, "rent": 1200.0},
		Fields:   []string{"rent"},
	}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "1"))
	q.Enqueue(conflictFixture("c2", "2"))
	q.Enqueue(conflictFixture("c3", "3"))

	noop := func(*models.ConflictRecord) error { return nil }
	require.NoError(t, q.ResolveCurrent(noop))
	require.NoError(t, q.ResolveCurrent(noop))

	head, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "c3", head.ID)
	assert.Equal(t, 1, q.Len())
}

func TestQueueCurrentDoesNotMutate(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "1"))

	for i := 0; i < 3; i++ {
		head, ok := q.Current()
		require.True(t, ok)
		assert.Equal(t, "c1", head.ID)
	}
	assert.Equal(t, 1, q.Len())
}

func TestQueueResolveFailureKeepsHead(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "1"))
	q.Enqueue(conflictFixture("c2", "2"))

	before := q.Len()
	err := q.ResolveCurrent(func(*models.ConflictRecord) error {
		return errors.New("remote unavailable")
	})
	require.Error(t, err)

	assert.Equal(t, before, q.Len())
	head, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "c1", head.ID)
}

func TestQueueResolveEmpty(t *testing.T) {
	q := NewConflictQueue()

	err := q.ResolveCurrent(func(*models.ConflictRecord) error { return nil })
	assert.True(t, apperrors.Is(err, apperrors.ErrEmptyQueue))
}

func TestQueueReject(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "1"))
	q.Enqueue(conflictFixture("c2", "2"))

	rejected, err := q.RejectCurrent()
	require.NoError(t, err)
	assert.Equal(t, "c1", rejected.ID)

	head, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "c2", head.ID)
}

func TestQueueRejectEmpty(t *testing.T) {
	q := NewConflictQueue()

	_, err := q.RejectCurrent()
	assert.True(t, apperrors.Is(err, apperrors.ErrEmptyQueue))
}

func TestQueueClear(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "1"))
	q.Enqueue(conflictFixture("c2", "2"))

	assert.Equal(t, 2, q.Clear())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Clear())
}

func TestQueueHas(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "5"))

	assert.True(t, q.Has("properties", "5"))
	assert.False(t, q.Has("properties", "6"))
	assert.False(t, q.Has("tenants", "5"))
	assert.False(t, q.Has("properties", ""))
}

// memPersistence is an in-memory Persistence with a failure switch.
type memPersistence struct {
	entries []*models.ConflictRecord
	writes  int
	readErr error
}

func (p *memPersistence) ReadConflicts() ([]*models.ConflictRecord, error) {
	if p.readErr != nil {
		return nil, p.readErr
	}
	return p.entries, nil
}

func (p *memPersistence) WriteConflicts(conflicts []*models.ConflictRecord) error {
	p.entries = append([]*models.ConflictRecord(nil), conflicts...)
	p.writes++
	return nil
}

func TestDurableQueueRestoresEntries(t *testing.T) {
	p := &memPersistence{entries: []*models.ConflictRecord{
		conflictFixture("c1", "1"),
		conflictFixture("c2", "2"),
	}}

	q := NewDurableConflictQueue(p)
	require.Equal(t, 2, q.Len())

	head, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "c1", head.ID)
}

func TestDurableQueueWritesThroughOnMutation(t *testing.T) {
	p := &memPersistence{}
	q := NewDurableConflictQueue(p)

	q.Enqueue(conflictFixture("c1", "1"))
	q.Enqueue(conflictFixture("c2", "2"))
	require.Len(t, p.entries, 2)

	require.NoError(t, q.ResolveCurrent(func(*models.ConflictRecord) error { return nil }))
	require.Len(t, p.entries, 1)
	assert.Equal(t, "c2", p.entries[0].ID)

	_, err := q.RejectCurrent()
	require.NoError(t, err)
	assert.Empty(t, p.entries)
}

func TestDurableQueueFailedResolveDoesNotPersistDequeue(t *testing.T) {
	p := &memPersistence{}
	q := NewDurableConflictQueue(p)
	q.Enqueue(conflictFixture("c1", "1"))

	writesBefore := p.writes
	err := q.ResolveCurrent(func(*models.ConflictRecord) error {
		return errors.New("remote unavailable")
	})
	require.Error(t, err)

	// No snapshot was taken; the persisted head is intact.
	assert.Equal(t, writesBefore, p.writes)
	require.Len(t, p.entries, 1)
	assert.Equal(t, "c1", p.entries[0].ID)
}

func TestDurableQueueClearPersists(t *testing.T) {
	p := &memPersistence{}
	q := NewDurableConflictQueue(p)
	q.Enqueue(conflictFixture("c1", "1"))
	q.Enqueue(conflictFixture("c2", "2"))

	assert.Equal(t, 2, q.Clear())
	assert.Empty(t, p.entries)
}

func TestDurableQueueUnreadableSnapshotStartsEmpty(t *testing.T) {
	p := &memPersistence{readErr: errors.New("corrupt snapshot")}

	q := NewDurableConflictQueue(p)
	assert.Equal(t, 0, q.Len())
}

func TestQueuePendingIsSnapshot(t *testing.T) {
	q := NewConflictQueue()
	q.Enqueue(conflictFixture("c1", "1"))

	pending := q.Pending()
	require.Len(t, pending, 1)

	q.Enqueue(conflictFixture("c2", "2"))
	assert.Len(t, pending, 1)
	assert.Len(t, q.Pending(), 2)
}
