package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"

	"HavenGo/models"
)

// NewRedisClient connects the live-feed client and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// FeedEvent is one pushed collection change from the hosted backend.
type FeedEvent struct {
	Collection models.Collection
	Document   json.RawMessage
}

// FeedHandler receives pushed documents for merge into the local cache.
type FeedHandler func(event FeedEvent)

// LiveFeed is the live-subscription primitive: the backend publishes
// per-user document changes on channels named sync:{uid}:{collection}, and
// the feed hands each decoded document to the handler. It is best-effort; a
// dropped subscription just means the record waits for the next hydrating
// read or sweep.
type LiveFeed struct {
	client *redis.Client
	userID string

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

func NewLiveFeed(client *redis.Client, userID string) *LiveFeed {
	return &LiveFeed{client: client, userID: userID}
}

func (f *LiveFeed) channelName(col models.Collection) string {
	return fmt.Sprintf("sync:%s:%s", f.userID, col)
}

// Start subscribes to every collection channel and pumps events until Close.
func (f *LiveFeed) Start(ctx context.Context, handler FeedHandler) error {
	channels := make([]string, 0, len(models.Collections))
	for _, col := range models.Collections {
		channels = append(channels, f.channelName(col))
	}

	pubsub := f.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe live feed: %w", err)
	}

	f.mu.Lock()
	f.pubsub = pubsub
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for msg := range pubsub.Channel() {
			col, ok := f.collectionFromChannel(msg.Channel)
			if !ok {
				continue
			}
			handler(FeedEvent{Collection: col, Document: json.RawMessage(msg.Payload)})
		}
	}()

	return nil
}

func (f *LiveFeed) collectionFromChannel(channel string) (models.Collection, bool) {
	prefix := fmt.Sprintf("sync:%s:", f.userID)
	name, found := strings.CutPrefix(channel, prefix)
	if !found {
		return "", false
	}
	for _, col := range models.Collections {
		if string(col) == name {
			return col, true
		}
	}
	return "", false
}

// Close unsubscribes and waits for the pump goroutine to drain.
func (f *LiveFeed) Close() error {
	f.mu.Lock()
	pubsub := f.pubsub
	f.pubsub = nil
	f.mu.Unlock()

	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	f.wg.Wait()
	return err
}
