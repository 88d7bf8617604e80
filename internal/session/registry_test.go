package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleoai/cleo/internal/domain"
	"github.com/cleoai/cleo/internal/logging"
)

// fakeConn is a minimal Conn for registry tests.
type fakeConn struct {
	id string

	mu     sync.Mutex
	closed bool
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testRegistry(capacity int) *Registry {
	return NewRegistry(capacity, logging.New(nil, "silent"))
}

func TestConnectCreatesEmptySession(t *testing.T) {
	reg := testRegistry(10)

	sess := reg.Connect(&fakeConn{id: "c1"})
	require.NotNil(t, sess)
	assert.Equal(t, 0, sess.History.Len())
	assert.False(t, sess.ConnectedAt.IsZero())

	got, ok := reg.Lookup("c1")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, reg.Len())
}

func TestDisconnectRemovesSession(t *testing.T) {
	reg := testRegistry(10)
	reg.Connect(&fakeConn{id: "c1"})

	reg.Disconnect("c1")
	_, ok := reg.Lookup("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestDisconnectUnknownIDIsNoop(t *testing.T) {
	reg := testRegistry(10)
	reg.Connect(&fakeConn{id: "c1"})

	reg.Disconnect("nope")
	assert.Equal(t, 1, reg.Len())
}

func TestLookupUnknownID(t *testing.T) {
	reg := testRegistry(10)
	_, ok := reg.Lookup("ghost")
	assert.False(t, ok)
}

func TestCapacityNeverExceeded(t *testing.T) {
	reg := testRegistry(3)

	for i := 0; i < 10; i++ {
		reg.Connect(&fakeConn{id: fmt.Sprintf("c%d", i)})
		assert.LessOrEqual(t, reg.Len(), 3)
	}
	assert.Equal(t, 3, reg.Len())
}

func TestEvictsOldestFirst(t *testing.T) {
	reg := testRegistry(2)

	oldConn := &fakeConn{id: "old"}
	newConn := &fakeConn{id: "new"}

	base := time.Now()
	reg.Connect(oldConn).ConnectedAt = base.Add(-time.Hour)
	reg.Connect(newConn).ConnectedAt = base

	// Third connection forces an eviction; "old" must be the victim.
	reg.Connect(&fakeConn{id: "c3"})

	_, ok := reg.Lookup("old")
	assert.False(t, ok, "oldest session should be evicted")
	assert.True(t, oldConn.isClosed(), "evicted connection should be closed")

	_, ok = reg.Lookup("new")
	assert.True(t, ok)
	assert.False(t, newConn.isClosed())
	_, ok = reg.Lookup("c3")
	assert.True(t, ok)
	assert.Equal(t, 2, reg.Len())
}

func TestEvictionPreservesSurvivorHistory(t *testing.T) {
	reg := testRegistry(2)

	base := time.Now()
	reg.Connect(&fakeConn{id: "a"}).ConnectedAt = base.Add(-2 * time.Hour)
	survivor := reg.Connect(&fakeConn{id: "b"})
	survivor.ConnectedAt = base.Add(-time.Hour)
	survivor.History.Append(domain.HistoryEntry{
		Role:      domain.RoleUser,
		Message:   domain.MessageContent{Text: "hello"},
		CreatedAt: base,
	})

	reg.Connect(&fakeConn{id: "c"})

	got, ok := reg.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 1, got.History.Len())
}

func TestDisconnectFreesCapacityWithoutEviction(t *testing.T) {
	reg := testRegistry(2)

	first := &fakeConn{id: "a"}
	reg.Connect(first)
	reg.Connect(&fakeConn{id: "b"})

	reg.Disconnect("b")
	reg.Connect(&fakeConn{id: "c"})

	// Room was made by the disconnect, so nobody gets evicted.
	assert.False(t, first.isClosed())
	assert.Equal(t, 2, reg.Len())
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	reg := testRegistry(0)
	reg.Connect(&fakeConn{id: "c1"})
	reg.Connect(&fakeConn{id: "c2"})
	assert.Equal(t, 2, reg.Len())
}

func TestConnectConcurrent(t *testing.T) {
	reg := testRegistry(16)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reg.Connect(&fakeConn{id: fmt.Sprintf("c%d", n)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, reg.Len())
}
