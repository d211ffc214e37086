package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"everysearch/internal/eventbus"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestIndexRewritePublishesOnce(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	changed := make(chan eventbus.IndexChangedEvent, 4)
	bus.Subscribe(eventbus.EventIndexChanged, func(e eventbus.DomainEvent) {
		changed <- e.(eventbus.IndexChangedEvent)
	})

	dir := t.TempDir()
	db := filepath.Join(dir, "plocate.db")
	w, err := New(bus, db, 50*time.Millisecond)
	require.NoError(t, err)
	w.Start(context.Background())
	defer w.Close()

	// updatedb writes a temp file and renames it over the database
	tmp := filepath.Join(dir, "plocate.db.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v1"), 0644))
	require.NoError(t, os.Rename(tmp, db))
	require.NoError(t, os.WriteFile(db, []byte("v2"), 0644))

	select {
	case e := <-changed:
		assert.Equal(t, db, e.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("index change not published")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, changed, "burst is debounced into one event")
}

func TestUnrelatedFilesIgnored(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	changed := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventIndexChanged, func(e eventbus.DomainEvent) { changed <- e })

	dir := t.TempDir()
	w, err := New(bus, filepath.Join(dir, "plocate.db"), 20*time.Millisecond)
	require.NoError(t, err)
	w.Start(context.Background())
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.db"), []byte("x"), 0644))

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, changed)
}

func TestMissingDirectory(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	_, err := New(bus, filepath.Join(t.TempDir(), "absent", "plocate.db"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	w, err := New(bus, filepath.Join(t.TempDir(), "plocate.db"), 0)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
