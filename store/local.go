package store

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"HavenGo/models"
)

// LocalStore is the accessor for the embedded cache. It is the authoritative
// read path: every user-facing read is served from here, and every write
// lands here before any remote mirror is attempted.
type LocalStore struct {
	db *gorm.DB
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// Close releases the underlying database handle.
func (s *LocalStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func tableFor(col models.Collection) (string, error) {
	switch col {
	case models.CollectionJournals:
		return models.JournalEntry{}.TableName(), nil
	case models.CollectionMessages:
		return models.ChatMessage{}.TableName(), nil
	case models.CollectionConversations:
		return models.Conversation{}.TableName(), nil
	case models.CollectionMoods:
		return models.MoodRecord{}.TableName(), nil
	}
	return "", fmt.Errorf("unknown collection %q", col)
}

// upsert is insert-or-replace keyed by the record identifier. Issuing the
// same upsert twice leaves the stored state identical to issuing it once.
func (s *LocalStore) upsert(record any) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

func (s *LocalStore) UpsertJournal(entry *models.JournalEntry) error {
	return s.upsert(entry)
}

func (s *LocalStore) UpsertMessage(message *models.ChatMessage) error {
	return s.upsert(message)
}

func (s *LocalStore) UpsertConversation(conversation *models.Conversation) error {
	return s.upsert(conversation)
}

func (s *LocalStore) UpsertMood(record *models.MoodRecord) error {
	return s.upsert(record)
}

func (s *LocalStore) GetJournal(id string) (models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.db.Where("id = ?", id).First(&entry).Error
	return entry, err
}

func (s *LocalStore) GetConversation(id string) (models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Where("id = ?", id).First(&conversation).Error
	return conversation, err
}

func (s *LocalStore) GetMood(id string) (models.MoodRecord, error) {
	var record models.MoodRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	return record, err
}

func (s *LocalStore) ListJournals() ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.db.Order("created_at desc").Find(&entries).Error
	return entries, err
}

func (s *LocalStore) ListConversations() ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.Order("last_message_at desc").Find(&conversations).Error
	return conversations, err
}

func (s *LocalStore) ListMessages(conversationID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at asc").Find(&messages).Error
	return messages, err
}

// ListMessagesBetween returns every message in [from, to) regardless of
// conversation, oldest first. Bounds are epoch milliseconds.
func (s *LocalStore) ListMessagesBetween(from, to int64) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").Find(&messages).Error
	return messages, err
}

func (s *LocalStore) ListMoods() ([]models.MoodRecord, error) {
	var records []models.MoodRecord
	err := s.db.Order("recorded_at desc").Find(&records).Error
	return records, err
}

func (s *LocalStore) DeleteJournal(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.JournalEntry{}).Error
}

func (s *LocalStore) DeleteMood(id string) error {
	return s.db.Where("id = ?", id).Delete(&models.MoodRecord{}).Error
}

// DeleteConversation removes a conversation and its messages.
func (s *LocalStore) DeleteConversation(id string) error {
	if err := s.db.Where("conversation_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
		return err
	}
	return s.db.Where("id = ?", id).Delete(&models.Conversation{}).Error
}

// MoodStats is the group-by-category aggregate backing the stats endpoint.
func (s *LocalStore) MoodStats() ([]models.MoodStat, error) {
	var stats []models.MoodStat
	err := s.db.Raw(
		`SELECT category, COUNT(*) AS count, AVG(score) AS avg_score
		 FROM mood_records GROUP BY category ORDER BY count DESC`,
	).Scan(&stats).Error
	return stats, err
}

// CountByState counts rows in a collection with the given sync state; a
// negative state counts everything.
func (s *LocalStore) CountByState(col models.Collection, state models.SyncState) (int64, error) {
	table, err := tableFor(col)
	if err != nil {
		return 0, err
	}
	var count int64
	query := s.db.Table(table)
	if state >= 0 {
		query = query.Where("sync_state = ?", state)
	}
	err = query.Count(&count).Error
	return count, err
}

// UnsyncedJournals returns the sweep set oldest-first.
func (s *LocalStore) UnsyncedJournals() ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.db.Where("sync_state = ?", models.SyncStateUnsynced).
		Order("created_at asc").Find(&entries).Error
	return entries, err
}

func (s *LocalStore) UnsyncedMessages() ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.Where("sync_state = ?", models.SyncStateUnsynced).
		Order("created_at asc").Find(&messages).Error
	return messages, err
}

func (s *LocalStore) UnsyncedConversations() ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.Where("sync_state = ?", models.SyncStateUnsynced).
		Order("created_at asc").Find(&conversations).Error
	return conversations, err
}

func (s *LocalStore) UnsyncedMoods() ([]models.MoodRecord, error) {
	var records []models.MoodRecord
	err := s.db.Where("sync_state = ?", models.SyncStateUnsynced).
		Order("recorded_at asc").Find(&records).Error
	return records, err
}

// MarkSynced flips a record to synced after a confirmed remote write.
func (s *LocalStore) MarkSynced(col models.Collection, id string) error {
	table, err := tableFor(col)
	if err != nil {
		return err
	}
	return s.db.Table(table).Where("id = ?", id).
		Updates(map[string]any{"sync_state": models.SyncStateSynced, "sync_attempts": 0}).Error
}

// RecordSyncFailure bumps the attempt counter and dead-letters the record
// once the cap is reached.
func (s *LocalStore) RecordSyncFailure(col models.Collection, id string, maxAttempts int) error {
	table, err := tableFor(col)
	if err != nil {
		return err
	}
	if err := s.db.Table(table).Where("id = ?", id).
		Update("sync_attempts", gorm.Expr("sync_attempts + 1")).Error; err != nil {
		return err
	}
	return s.db.Table(table).
		Where("id = ? AND sync_attempts >= ?", id, maxAttempts).
		Update("sync_state", models.SyncStateFailed).Error
}

// ResetFailed returns dead-lettered rows to the sweep set.
func (s *LocalStore) ResetFailed() (int64, error) {
	var total int64
	for _, col := range models.Collections {
		table, err := tableFor(col)
		if err != nil {
			return total, err
		}
		result := s.db.Table(table).Where("sync_state = ?", models.SyncStateFailed).
			Updates(map[string]any{"sync_state": models.SyncStateUnsynced, "sync_attempts": 0})
		if result.Error != nil {
			return total, result.Error
		}
		total += result.RowsAffected
	}
	return total, nil
}
