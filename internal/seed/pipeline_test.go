package seed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userbase-hq/userbase/internal/shared"
	"github.com/userbase-hq/userbase/internal/users"
)

type mockStore struct {
	mu      sync.Mutex
	emails  map[string]struct{}
	records []users.NewUser
	countFn func() (int64, error)
	bulkErr error
}

func newMockStore() *mockStore {
	return &mockStore{emails: make(map[string]struct{})}
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countFn != nil {
		return m.countFn()
	}
	return int64(len(m.records)), nil
}

func (m *mockStore) CreateUser(ctx context.Context, rec users.NewUser) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.emails[rec.Email]; dup {
		return users.User{}, shared.ErrDuplicate
	}
	m.emails[rec.Email] = struct{}{}
	m.records = append(m.records, rec)
	return users.User{
		ID:        int64(len(m.records)),
		Name:      rec.Name,
		Email:     rec.Email,
		Phone:     rec.Phone,
		BirthDate: rec.BirthDate,
	}, nil
}

func (m *mockStore) BulkInsert(ctx context.Context, recs []users.NewUser) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bulkErr != nil {
		return 0, 0, m.bulkErr
	}
	inserted, skipped := 0, 0
	for _, rec := range recs {
		if _, dup := m.emails[rec.Email]; dup {
			skipped++
			continue
		}
		m.emails[rec.Email] = struct{}{}
		m.records = append(m.records, rec)
		inserted++
	}
	return inserted, skipped, nil
}

func newTestPipeline(store Store, cfg Config) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(store, logger, nil, cfg)
	p.gen = NewGenerator(1)
	return p
}

func TestBootstrapCreatesTestRecordOnEmptyStore(t *testing.T) {
	store := newMockStore()
	p := newTestPipeline(store, Config{Total: 10, BatchSize: 5, Throttle: time.Microsecond})

	seeded, err := p.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, TestUserName, rec.Name)
	assert.Equal(t, TestUserEmail, rec.Email)
	assert.Equal(t, TestUserPhone, rec.Phone)
	assert.Equal(t, testUserBirthDate, rec.BirthDate)
}

func TestBootstrapSkipsPopulatedStore(t *testing.T) {
	store := newMockStore()
	_, err := store.CreateUser(context.Background(), users.NewUser{Email: "existing@example.com"})
	require.NoError(t, err)

	p := newTestPipeline(store, Config{Total: 10, BatchSize: 5, Throttle: time.Microsecond})

	seeded, err := p.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, store.records, 1)
}

func TestBootstrapTwiceInsertsNothingExtra(t *testing.T) {
	store := newMockStore()
	p := newTestPipeline(store, Config{Total: 10, BatchSize: 5, Throttle: time.Microsecond})

	seeded, err := p.Bootstrap(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)

	seeded, err = p.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, store.records, 1)
}

func TestPopulateInsertsTotalInBatches(t *testing.T) {
	store := newMockStore()
	p := newTestPipeline(store, Config{Total: 23, BatchSize: 10, Throttle: time.Microsecond})

	require.NoError(t, p.Populate(context.Background()))
	assert.Len(t, store.records, 23)
}

func TestPopulateSkipsDuplicatesAndKeepsGoing(t *testing.T) {
	store := newMockStore()
	// Pre-claim one of the counter-derived emails so exactly one record in the
	// run counts as a conflict.
	_, err := store.CreateUser(context.Background(), users.NewUser{Email: "user7@example.com"})
	require.NoError(t, err)

	p := newTestPipeline(store, Config{Total: 20, BatchSize: 10, Throttle: time.Microsecond})

	require.NoError(t, p.Populate(context.Background()))
	// 1 pre-existing + 19 seeded; the conflicting record was skipped, the rest
	// of its batch landed.
	assert.Len(t, store.records, 20)
}

func TestPopulateAbortsOnStoreFailure(t *testing.T) {
	store := newMockStore()
	store.bulkErr = shared.ErrStoreUnavailable

	p := newTestPipeline(store, Config{Total: 20, BatchSize: 10, Throttle: time.Microsecond})

	err := p.Populate(context.Background())
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestPopulateStopsOnContextCancel(t *testing.T) {
	store := newMockStore()
	p := newTestPipeline(store, Config{Total: 1_000, BatchSize: 10, Throttle: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Populate(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, len(store.records), 10)
}

type panickyStore struct{ *mockStore }

func (p panickyStore) BulkInsert(ctx context.Context, recs []users.NewUser) (int, int, error) {
	panic("store gone")
}

func TestStartBackgroundContainsPanics(t *testing.T) {
	p := newTestPipeline(panickyStore{newMockStore()}, Config{Total: 10, BatchSize: 5, Throttle: time.Microsecond})

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.StartBackground(context.Background())
		// Give the goroutine time to hit the panic and recover.
		time.Sleep(50 * time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background run did not settle")
	}
}
