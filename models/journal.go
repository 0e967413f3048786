package models

import "time"

// JournalEntry is the local cache row for a journal entry.
type JournalEntry struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(100)" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	CreatedAt    int64     `gorm:"index" json:"createdAt"`
	UpdatedAt    int64     `json:"updatedAt"`
	SyncState    SyncState `gorm:"index;default:0" json:"syncState"`
	SyncAttempts int       `gorm:"default:0" json:"-"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

// JournalDocument is the remote document representation of a JournalEntry.
type JournalDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *JournalEntry) ToDocument() JournalDocument {
	return JournalDocument{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		CreatedAt: time.UnixMilli(e.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(e.UpdatedAt).UTC(),
	}
}

func JournalEntryFromDocument(doc JournalDocument) JournalEntry {
	return JournalEntry{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt.UnixMilli(),
		UpdatedAt: doc.UpdatedAt.UnixMilli(),
		SyncState: SyncStateSynced,
	}
}
