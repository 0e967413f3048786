package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"HavenGo/config"
	"HavenGo/models"
	"HavenGo/store"
)

func TestMain(m *testing.M) {
	config.Logger = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *store.LocalStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.JournalEntry{},
		&models.ChatMessage{},
		&models.Conversation{},
		&models.MoodRecord{},
	))

	local := store.NewLocalStore(db)
	t.Cleanup(func() { _ = local.Close() })
	return local
}

// fakeRemote is an in-memory RemoteStore that counts upserts per record.
type fakeRemote struct {
	mu      sync.Mutex
	docs    map[string]map[string]json.RawMessage
	upserts map[string]int
	failAll bool
	gate    chan struct{}
	started chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs:    make(map[string]map[string]json.RawMessage),
		upserts: make(map[string]int),
	}
}

func (f *fakeRemote) UpsertDocument(ctx context.Context, col models.Collection, id string, doc any) error {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[string(col)+"/"+id]++
	if f.failAll {
		return fmt.Errorf("remote unavailable")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if f.docs[string(col)] == nil {
		f.docs[string(col)] = make(map[string]json.RawMessage)
	}
	f.docs[string(col)][id] = raw
	return nil
}

func (f *fakeRemote) DeleteDocument(ctx context.Context, col models.Collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("remote unavailable")
	}
	delete(f.docs[string(col)], id)
	return nil
}

func (f *fakeRemote) QueryDocuments(ctx context.Context, col models.Collection, filter map[string]string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("remote unavailable")
	}
	raws := make([]json.RawMessage, 0, len(f.docs[string(col)]))
	for _, raw := range f.docs[string(col)] {
		raws = append(raws, raw)
	}
	combined, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(combined, out)
}

func (f *fakeRemote) upsertCount(col models.Collection, id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts[string(col)+"/"+id]
}

func newTestSync(t *testing.T, remote store.RemoteStore, online bool) (*SyncService, *store.LocalStore) {
	t.Helper()
	local := newTestStore(t)
	flag := online
	service := NewSyncService(local, remote, func() bool { return flag }, time.Second, 3)
	return service, local
}

func TestSaveJournal_OfflineStaysUnsynced(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, false)

	entry := models.JournalEntry{ID: "j1", Title: "day one", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, service.SaveJournal(&entry))
	service.Wait()

	stored, err := local.GetJournal("j1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateUnsynced, stored.SyncState)
	assert.Equal(t, 0, remote.upsertCount(models.CollectionJournals, "j1"))
}

func TestSaveJournal_OnlineMirrorsAndMarksSynced(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, true)

	entry := models.JournalEntry{ID: "j1", Title: "day one", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, service.SaveJournal(&entry))
	service.Wait()

	stored, err := local.GetJournal("j1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateSynced, stored.SyncState)
	assert.Equal(t, 1, remote.upsertCount(models.CollectionJournals, "j1"))
}

func TestSaveJournal_LocalMutationRevertsToUnsynced(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, true)

	entry := models.JournalEntry{ID: "j1", Title: "day one", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, service.SaveJournal(&entry))
	service.Wait()

	// Edit while offline: the prior remote confirmation no longer counts.
	offline := NewSyncService(local, remote, func() bool { return false }, time.Second, 3)
	edited := models.JournalEntry{ID: "j1", Title: "day one, edited", CreatedAt: 1000, UpdatedAt: 2000}
	require.NoError(t, offline.SaveJournal(&edited))

	stored, err := local.GetJournal("j1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateUnsynced, stored.SyncState)
}

func TestSweep_PushesAllUnsyncedExactlyOnce(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, false)

	const n = 5
	for i := 0; i < n; i++ {
		entry := models.JournalEntry{
			ID:        fmt.Sprintf("j%d", i),
			Title:     fmt.Sprintf("entry %d", i),
			CreatedAt: int64(1000 + i),
			UpdatedAt: int64(1000 + i),
		}
		require.NoError(t, service.SaveJournal(&entry))
	}

	service.Sweep(context.Background())

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("j%d", i)
		stored, err := local.GetJournal(id)
		require.NoError(t, err)
		assert.Equal(t, models.SyncStateSynced, stored.SyncState, "id %s", id)
		assert.Equal(t, 1, remote.upsertCount(models.CollectionJournals, id), "id %s", id)
	}
}

func TestSweep_ConcurrentTriggerIsDropped(t *testing.T) {
	remote := newFakeRemote()
	remote.gate = make(chan struct{})
	remote.started = make(chan struct{}, 1)
	service, _ := newTestSync(t, remote, false)

	entry := models.JournalEntry{ID: "j1", Title: "day one", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, service.SaveJournal(&entry))

	done := make(chan struct{})
	go func() {
		service.Sweep(context.Background())
		close(done)
	}()

	<-remote.started
	assert.True(t, service.Sweeping())

	// This trigger lands mid-sweep and must be dropped, not queued.
	service.Sweep(context.Background())

	close(remote.gate)
	<-done

	assert.False(t, service.Sweeping())
	assert.Equal(t, 1, remote.upsertCount(models.CollectionJournals, "j1"))
}

func TestSweep_FailuresDeadLetterAfterCap(t *testing.T) {
	remote := newFakeRemote()
	remote.failAll = true
	local := newTestStore(t)
	service := NewSyncService(local, remote, func() bool { return false }, time.Second, 2)

	entry := models.JournalEntry{ID: "j1", Title: "day one", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, service.SaveJournal(&entry))

	service.Sweep(context.Background())
	stored, err := local.GetJournal("j1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateUnsynced, stored.SyncState)
	assert.Equal(t, 1, stored.SyncAttempts)

	service.Sweep(context.Background())
	stored, err = local.GetJournal("j1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateFailed, stored.SyncState)

	// Dead-lettered records leave the sweep set entirely.
	service.Sweep(context.Background())
	assert.Equal(t, 2, remote.upsertCount(models.CollectionJournals, "j1"))

	// A manual reset puts them back.
	count, err := service.RetryFailed()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	remote.failAll = false
	service.Sweep(context.Background())
	stored, err = local.GetJournal("j1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateSynced, stored.SyncState)
}

func TestLoadJournals_HydratesEmptyCacheOnce(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, true)

	seed := models.JournalEntry{ID: "r1", Title: "from remote", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, remote.UpsertDocument(context.Background(), models.CollectionJournals, "r1", seed.ToDocument()))

	entries, err := service.LoadJournals(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0].ID)
	// Hydrated rows mirror confirmed remote copies.
	assert.Equal(t, models.SyncStateSynced, entries[0].SyncState)

	// Once non-empty the cache is authoritative: a second remote document
	// must not appear on a plain read.
	extra := models.JournalEntry{ID: "r2", Title: "late arrival", CreatedAt: 2000, UpdatedAt: 2000}
	require.NoError(t, remote.UpsertDocument(context.Background(), models.CollectionJournals, "r2", extra.ToDocument()))

	entries, err = service.LoadJournals(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = local.GetJournal("r2")
	assert.Error(t, err)
}

func TestDeleteJournal_LocalDeleteIsUnconditional(t *testing.T) {
	remote := newFakeRemote()
	remote.failAll = true
	service, local := newTestSync(t, remote, true)

	entry := models.JournalEntry{ID: "j1", Title: "day one", CreatedAt: 1000, UpdatedAt: 1000}
	require.NoError(t, local.UpsertJournal(&entry))

	require.NoError(t, service.DeleteJournal("j1"))
	service.Wait()

	_, err := local.GetJournal("j1")
	assert.Error(t, err)
}

func TestHandleFeedEvent_MergesPushedDocument(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, true)

	doc := models.MoodDocument{
		ID:         "m1",
		Category:   "calm",
		Score:      7,
		Origin:     "manual",
		RecordedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	service.HandleFeedEvent(store.FeedEvent{Collection: models.CollectionMoods, Document: raw})

	stored, err := local.GetMood("m1")
	require.NoError(t, err)
	assert.Equal(t, models.MoodCalm, stored.Category)
	assert.Equal(t, models.SyncStateSynced, stored.SyncState)
	assert.Equal(t, doc.RecordedAt.UnixMilli(), stored.RecordedAt)
}

func TestStatus_CountsBacklogPerCollection(t *testing.T) {
	remote := newFakeRemote()
	service, local := newTestSync(t, remote, false)

	require.NoError(t, service.SaveJournal(&models.JournalEntry{ID: "j1", Title: "t", CreatedAt: 1, UpdatedAt: 1}))
	require.NoError(t, service.SaveConversation(&models.Conversation{ID: "c1", Title: "t", CreatedAt: 1}))
	require.NoError(t, local.UpsertMood(&models.MoodRecord{
		ID: "m1", Category: models.MoodSad, Score: 3,
		Origin: models.OriginManual, RecordedAt: 1, SyncState: models.SyncStateFailed,
	}))

	status, err := service.Status()
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.Equal(t, int64(1), status.Unsynced["journals"])
	assert.Equal(t, int64(1), status.Unsynced["conversations"])
	assert.Equal(t, int64(0), status.Unsynced["moods"])
	assert.Equal(t, int64(1), status.Failed["moods"])
}
