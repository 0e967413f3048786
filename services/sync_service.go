package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"HavenGo/config"
	"HavenGo/models"
	"HavenGo/store"
)

// SyncService is the offline-first persistence layer. Every write lands in
// the local cache synchronously and never fails the user action on remote
// grounds; the remote mirror is best-effort with a bounded timeout, and the
// reconciliation sweep replays whatever is still unsynced once connectivity
// returns.
type SyncService struct {
	local  *store.LocalStore
	remote store.RemoteStore
	online func() bool

	mirrorTimeout time.Duration
	maxAttempts   int

	sweeping atomic.Bool
	wg       sync.WaitGroup
}

func NewSyncService(local *store.LocalStore, remote store.RemoteStore, online func() bool, mirrorTimeout time.Duration, maxAttempts int) *SyncService {
	return &SyncService{
		local:         local,
		remote:        remote,
		online:        online,
		mirrorTimeout: mirrorTimeout,
		maxAttempts:   maxAttempts,
	}
}

// SaveJournal persists locally first, then mirrors opportunistically.
func (s *SyncService) SaveJournal(entry *models.JournalEntry) error {
	entry.SyncState = models.SyncStateUnsynced
	entry.SyncAttempts = 0
	if err := s.local.UpsertJournal(entry); err != nil {
		return err
	}
	s.mirror(models.CollectionJournals, entry.ID, entry.ToDocument())
	return nil
}

func (s *SyncService) SaveMessage(message *models.ChatMessage) error {
	message.SyncState = models.SyncStateUnsynced
	message.SyncAttempts = 0
	if err := s.local.UpsertMessage(message); err != nil {
		return err
	}
	s.mirror(models.CollectionMessages, message.ID, message.ToDocument())
	return nil
}

func (s *SyncService) SaveConversation(conversation *models.Conversation) error {
	conversation.SyncState = models.SyncStateUnsynced
	conversation.SyncAttempts = 0
	if err := s.local.UpsertConversation(conversation); err != nil {
		return err
	}
	s.mirror(models.CollectionConversations, conversation.ID, conversation.ToDocument())
	return nil
}

func (s *SyncService) SaveMood(record *models.MoodRecord) error {
	record.SyncState = models.SyncStateUnsynced
	record.SyncAttempts = 0
	if err := s.local.UpsertMood(record); err != nil {
		return err
	}
	doc, err := record.ToDocument()
	if err != nil {
		config.Logger.Errorw("mood document conversion failed", "error", err, "id", record.ID)
		return nil
	}
	s.mirror(models.CollectionMoods, record.ID, doc)
	return nil
}

// DeleteJournal deletes locally without condition and issues a best-effort
// remote delete. A failed remote delete is not rolled back.
func (s *SyncService) DeleteJournal(id string) error {
	if err := s.local.DeleteJournal(id); err != nil {
		return err
	}
	s.mirrorDelete(models.CollectionJournals, id)
	return nil
}

func (s *SyncService) DeleteMood(id string) error {
	if err := s.local.DeleteMood(id); err != nil {
		return err
	}
	s.mirrorDelete(models.CollectionMoods, id)
	return nil
}

func (s *SyncService) DeleteConversation(id string) error {
	if err := s.local.DeleteConversation(id); err != nil {
		return err
	}
	s.mirrorDelete(models.CollectionConversations, id)
	return nil
}

// mirror dispatches a supervised background remote write. It never blocks
// the caller; offline it is skipped outright and the record waits for the
// next sweep. The remote write is an idempotent upsert keyed by id, so a
// race with a concurrent sweep of the same record is harmless.
func (s *SyncService) mirror(col models.Collection, id string, doc any) {
	if !s.online() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()

		if err := s.remote.UpsertDocument(ctx, col, id, doc); err != nil {
			config.Logger.Warnw("mirror write failed", "collection", col, "id", id, "error", err)
			if err := s.local.RecordSyncFailure(col, id, s.maxAttempts); err != nil {
				config.Logger.Errorw("record sync failure", "collection", col, "id", id, "error", err)
			}
			return
		}
		if err := s.local.MarkSynced(col, id); err != nil {
			config.Logger.Errorw("mark synced", "collection", col, "id", id, "error", err)
		}
	}()
}

func (s *SyncService) mirrorDelete(col models.Collection, id string) {
	if !s.online() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()

		if err := s.remote.DeleteDocument(ctx, col, id); err != nil {
			config.Logger.Warnw("remote delete failed", "collection", col, "id", id, "error", err)
		}
	}()
}

// LoadJournals reads from the cache; an entirely empty collection is
// hydrated once from the remote store when online. Once non-empty the cache
// is authoritative.
func (s *SyncService) LoadJournals(ctx context.Context) ([]models.JournalEntry, error) {
	entries, err := s.local.ListJournals()
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 || !s.online() {
		return entries, nil
	}

	var docs []models.JournalDocument
	if err := s.remote.QueryDocuments(ctx, models.CollectionJournals, nil, &docs); err != nil {
		config.Logger.Warnw("journal hydration failed", "error", err)
		return entries, nil
	}
	for _, doc := range docs {
		entry := models.JournalEntryFromDocument(doc)
		if err := s.local.UpsertJournal(&entry); err != nil {
			return nil, err
		}
	}
	return s.local.ListJournals()
}

func (s *SyncService) LoadConversations(ctx context.Context) ([]models.Conversation, error) {
	conversations, err := s.local.ListConversations()
	if err != nil {
		return nil, err
	}
	if len(conversations) > 0 || !s.online() {
		return conversations, nil
	}

	var docs []models.ConversationDocument
	if err := s.remote.QueryDocuments(ctx, models.CollectionConversations, nil, &docs); err != nil {
		config.Logger.Warnw("conversation hydration failed", "error", err)
		return conversations, nil
	}
	for _, doc := range docs {
		conversation := models.ConversationFromDocument(doc)
		if err := s.local.UpsertConversation(&conversation); err != nil {
			return nil, err
		}
	}
	return s.local.ListConversations()
}

func (s *SyncService) LoadMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	messages, err := s.local.ListMessages(conversationID)
	if err != nil {
		return nil, err
	}
	if len(messages) > 0 || !s.online() {
		return messages, nil
	}

	var docs []models.ChatMessageDocument
	filter := map[string]string{"conversationId": conversationID}
	if err := s.remote.QueryDocuments(ctx, models.CollectionMessages, filter, &docs); err != nil {
		config.Logger.Warnw("message hydration failed", "conversationId", conversationID, "error", err)
		return messages, nil
	}
	for _, doc := range docs {
		message, err := models.ChatMessageFromDocument(doc)
		if err != nil {
			config.Logger.Warnw("skipping malformed remote message", "id", doc.ID, "error", err)
			continue
		}
		if err := s.local.UpsertMessage(&message); err != nil {
			return nil, err
		}
	}
	return s.local.ListMessages(conversationID)
}

func (s *SyncService) LoadMoods(ctx context.Context) ([]models.MoodRecord, error) {
	records, err := s.local.ListMoods()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 || !s.online() {
		return records, nil
	}

	var docs []models.MoodDocument
	if err := s.remote.QueryDocuments(ctx, models.CollectionMoods, nil, &docs); err != nil {
		config.Logger.Warnw("mood hydration failed", "error", err)
		return records, nil
	}
	for _, doc := range docs {
		record, err := models.MoodRecordFromDocument(doc)
		if err != nil {
			config.Logger.Warnw("skipping malformed remote mood", "id", doc.ID, "error", err)
			continue
		}
		if err := s.local.UpsertMood(&record); err != nil {
			return nil, err
		}
	}
	return s.local.ListMoods()
}

// Sweep replays every unsynced record, one remote write each, oldest first,
// conversations before their messages. Only one sweep runs at a time; a
// trigger during an in-flight sweep is dropped, not queued.
func (s *SyncService) Sweep(ctx context.Context) {
	if !s.sweeping.CompareAndSwap(false, true) {
		config.Logger.Debugw("sweep already in progress, dropping trigger")
		return
	}
	defer s.sweeping.Store(false)

	config.Logger.Infow("reconciliation sweep started")
	pushed, failed := 0, 0

	conversations, err := s.local.UnsyncedConversations()
	if err != nil {
		config.Logger.Errorw("sweep: load unsynced conversations", "error", err)
	}
	for i := range conversations {
		if s.push(ctx, models.CollectionConversations, conversations[i].ID, conversations[i].ToDocument()) {
			pushed++
		} else {
			failed++
		}
	}

	messages, err := s.local.UnsyncedMessages()
	if err != nil {
		config.Logger.Errorw("sweep: load unsynced messages", "error", err)
	}
	for i := range messages {
		if s.push(ctx, models.CollectionMessages, messages[i].ID, messages[i].ToDocument()) {
			pushed++
		} else {
			failed++
		}
	}

	journals, err := s.local.UnsyncedJournals()
	if err != nil {
		config.Logger.Errorw("sweep: load unsynced journals", "error", err)
	}
	for i := range journals {
		if s.push(ctx, models.CollectionJournals, journals[i].ID, journals[i].ToDocument()) {
			pushed++
		} else {
			failed++
		}
	}

	moods, err := s.local.UnsyncedMoods()
	if err != nil {
		config.Logger.Errorw("sweep: load unsynced moods", "error", err)
	}
	for i := range moods {
		doc, err := moods[i].ToDocument()
		if err != nil {
			config.Logger.Warnw("sweep: skipping malformed mood", "id", moods[i].ID, "error", err)
			failed++
			continue
		}
		if s.push(ctx, models.CollectionMoods, moods[i].ID, doc) {
			pushed++
		} else {
			failed++
		}
	}

	config.Logger.Infow("reconciliation sweep finished", "pushed", pushed, "failed", failed)
}

// push mirrors a single record within the sweep, bounded by the mirror
// timeout. Failures are recorded and left for the next sweep.
func (s *SyncService) push(ctx context.Context, col models.Collection, id string, doc any) bool {
	writeCtx, cancel := context.WithTimeout(ctx, s.mirrorTimeout)
	defer cancel()

	if err := s.remote.UpsertDocument(writeCtx, col, id, doc); err != nil {
		config.Logger.Warnw("sweep write failed", "collection", col, "id", id, "error", err)
		if err := s.local.RecordSyncFailure(col, id, s.maxAttempts); err != nil {
			config.Logger.Errorw("record sync failure", "collection", col, "id", id, "error", err)
		}
		return false
	}
	if err := s.local.MarkSynced(col, id); err != nil {
		config.Logger.Errorw("mark synced", "collection", col, "id", id, "error", err)
	}
	return true
}

// Sweeping reports whether a sweep is currently running.
func (s *SyncService) Sweeping() bool {
	return s.sweeping.Load()
}

// RetryFailed moves dead-lettered records back into the sweep set.
func (s *SyncService) RetryFailed() (int64, error) {
	return s.local.ResetFailed()
}

// Status reports per-collection backlog sizes for the sync endpoint.
func (s *SyncService) Status() (models.SyncStatusResponse, error) {
	status := models.SyncStatusResponse{
		Online:   s.online(),
		Sweeping: s.Sweeping(),
		Unsynced: make(map[string]int64, len(models.Collections)),
		Failed:   make(map[string]int64, len(models.Collections)),
	}
	for _, col := range models.Collections {
		unsynced, err := s.local.CountByState(col, models.SyncStateUnsynced)
		if err != nil {
			return status, err
		}
		failed, err := s.local.CountByState(col, models.SyncStateFailed)
		if err != nil {
			return status, err
		}
		status.Unsynced[string(col)] = unsynced
		status.Failed[string(col)] = failed
	}
	return status, nil
}

// HandleFeedEvent merges a pushed remote document into the local cache.
// The row lands synced: it is a confirmed remote copy by definition.
func (s *SyncService) HandleFeedEvent(event store.FeedEvent) {
	switch event.Collection {
	case models.CollectionJournals:
		var doc models.JournalDocument
		if err := json.Unmarshal(event.Document, &doc); err != nil {
			config.Logger.Warnw("feed: bad journal document", "error", err)
			return
		}
		entry := models.JournalEntryFromDocument(doc)
		if err := s.local.UpsertJournal(&entry); err != nil {
			config.Logger.Errorw("feed: merge journal", "id", doc.ID, "error", err)
		}
	case models.CollectionMessages:
		var doc models.ChatMessageDocument
		if err := json.Unmarshal(event.Document, &doc); err != nil {
			config.Logger.Warnw("feed: bad message document", "error", err)
			return
		}
		message, err := models.ChatMessageFromDocument(doc)
		if err != nil {
			config.Logger.Warnw("feed: bad message role", "id", doc.ID, "error", err)
			return
		}
		if err := s.local.UpsertMessage(&message); err != nil {
			config.Logger.Errorw("feed: merge message", "id", doc.ID, "error", err)
		}
	case models.CollectionConversations:
		var doc models.ConversationDocument
		if err := json.Unmarshal(event.Document, &doc); err != nil {
			config.Logger.Warnw("feed: bad conversation document", "error", err)
			return
		}
		conversation := models.ConversationFromDocument(doc)
		if err := s.local.UpsertConversation(&conversation); err != nil {
			config.Logger.Errorw("feed: merge conversation", "id", doc.ID, "error", err)
		}
	case models.CollectionMoods:
		var doc models.MoodDocument
		if err := json.Unmarshal(event.Document, &doc); err != nil {
			config.Logger.Warnw("feed: bad mood document", "error", err)
			return
		}
		record, err := models.MoodRecordFromDocument(doc)
		if err != nil {
			config.Logger.Warnw("feed: bad mood category", "id", doc.ID, "error", err)
			return
		}
		if err := s.local.UpsertMood(&record); err != nil {
			config.Logger.Errorw("feed: merge mood", "id", doc.ID, "error", err)
		}
	}
}

// Wait drains outstanding mirror writes, for graceful shutdown.
func (s *SyncService) Wait() {
	s.wg.Wait()
}
