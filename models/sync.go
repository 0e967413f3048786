package models

// SyncState tracks whether the local copy of a record is known to match a
// confirmed remote write.
type SyncState int

const (
	// SyncStateUnsynced is the state of every freshly written or locally
	// mutated record.
	SyncStateUnsynced SyncState = 0
	// SyncStateSynced means a remote write for this exact record was confirmed.
	SyncStateSynced SyncState = 1
	// SyncStateFailed means the mirror attempt cap was exhausted; the record
	// is excluded from sweeps until explicitly reset.
	SyncStateFailed SyncState = 2
)

// Collection names the remote document collections. The local cache tables
// mirror them one to one.
type Collection string

const (
	CollectionJournals      Collection = "journals"
	CollectionMessages      Collection = "messages"
	CollectionConversations Collection = "conversations"
	CollectionMoods         Collection = "moods"
)

// Collections in the order sweeps visit them. Conversations before messages
// so a hydrating client sees the parent first.
var Collections = []Collection{
	CollectionConversations,
	CollectionMessages,
	CollectionJournals,
	CollectionMoods,
}
