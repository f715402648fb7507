package feed

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/vivaha/backend/internal/cache"
	"github.com/vivaha/backend/internal/models"
	"github.com/vivaha/backend/internal/repository"
)

const queryTimeout = 5 * time.Second

// Live is the production feed. Writers publish change events to redis after
// every mutation; Live re-queries the document store and pushes a fresh
// snapshot to every affected subscriber. Callbacks for one subscription run
// on a dedicated goroutine, so they are serialized, and pending notifications
// coalesce while a snapshot is being delivered.
type Live struct {
	redis    *cache.RedisClient
	convRepo *repository.ConversationRepository
	msgRepo  *repository.MessageRepository

	mu         sync.Mutex
	nextID     int
	convSubs   map[string]map[int]*subscriber // keyed by user id
	msgSubs    map[string]map[int]*subscriber // keyed by conversation id
	unreadSubs map[string]map[int]*subscriber // keyed by user id
}

type subscriber struct {
	notify chan struct{}
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
		// a notification is already pending; snapshots are cumulative so
		// dropping the extra wake-up loses nothing
	}
}

func (s *subscriber) cancel() {
	s.once.Do(func() { close(s.stop) })
}

// NewLive builds the live feed. A missing transport or store is a
// configuration failure reported here, not an empty feed later.
func NewLive(redis *cache.RedisClient, convRepo *repository.ConversationRepository, msgRepo *repository.MessageRepository) (*Live, error) {
	if redis == nil || convRepo == nil || msgRepo == nil {
		return nil, ErrNotConfigured
	}
	return &Live{
		redis:      redis,
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		convSubs:   make(map[string]map[int]*subscriber),
		msgSubs:    make(map[string]map[int]*subscriber),
		unreadSubs: make(map[string]map[int]*subscriber),
	}, nil
}

// Run consumes change events until the context is cancelled. Call in its own
// goroutine.
func (f *Live) Run(ctx context.Context) {
	pubsub := f.redis.SubscribeToChanges()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("feed: dropping malformed change event: %v", err)
				continue
			}
			f.dispatch(event)
		}
	}
}

func (f *Live) dispatch(event models.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, userID := range event.UserIDs {
		for _, sub := range f.convSubs[userID] {
			sub.wake()
		}
		for _, sub := range f.unreadSubs[userID] {
			sub.wake()
		}
	}
	if event.ConversationID != "" {
		for _, sub := range f.msgSubs[event.ConversationID] {
			sub.wake()
		}
	}
}

func (f *Live) SubscribeToConversations(userID string, fn func([]models.Conversation)) (func(), error) {
	return f.subscribe(f.convSubs, userID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		conversations, err := f.convRepo.GetByOwner(ctx, userID)
		if err != nil {
			log.Printf("feed: conversation snapshot for %s failed: %v", userID, err)
			return
		}
		SortConversations(conversations)
		fn(conversations)
	})
}

func (f *Live) SubscribeToMessages(conversationID string, fn func([]models.Message)) (func(), error) {
	return f.subscribe(f.msgSubs, conversationID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		messages, err := f.msgRepo.GetByConversationID(ctx, conversationID, 0)
		if err != nil {
			log.Printf("feed: message snapshot for %s failed: %v", conversationID, err)
			return
		}
		SortMessages(messages)
		fn(messages)
	})
}

func (f *Live) SubscribeToUnreadCount(userID string, fn func(int)) (func(), error) {
	return f.subscribe(f.unreadSubs, userID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		total, err := f.convRepo.TotalUnread(ctx, userID)
		if err != nil {
			log.Printf("feed: unread snapshot for %s failed: %v", userID, err)
			return
		}
		fn(total)
	})
}

// subscribe registers a subscriber under key and starts its delivery
// goroutine. push queries the store and invokes the consumer callback with a
// fresh snapshot.
func (f *Live) subscribe(registry map[string]map[int]*subscriber, key string, push func()) (func(), error) {
	sub := &subscriber{
		notify: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	if registry[key] == nil {
		registry[key] = make(map[int]*subscriber)
	}
	registry[key][id] = sub
	f.mu.Unlock()

	// immediate initial snapshot, then one per wake-up
	sub.wake()

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-sub.stop:
				return
			case <-sub.notify:
				select {
				case <-sub.stop:
					return
				default:
				}
				push()
			}
		}
	}()

	// cancel blocks until the delivery goroutine exits, so a snapshot that
	// was already being pushed completes before cancel returns and none
	// follow it. Must not be called from inside the subscription callback.
	cancel := func() {
		sub.cancel()
		<-sub.done
		f.mu.Lock()
		delete(registry[key], id)
		if len(registry[key]) == 0 {
			delete(registry, key)
		}
		f.mu.Unlock()
	}

	return cancel, nil
}
