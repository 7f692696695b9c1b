package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/label-minter/server/internal/agent/model"
)

type memoryConversation struct {
	messages  []*schema.Message
	expiresAt time.Time
}

// MemoryConversationRepository keeps conversation histories in a bounded
// LRU with the same sliding TTL as the Redis repository.
type MemoryConversationRepository struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *memoryConversation]
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryConversationRepository(size int, ttl time.Duration) (*MemoryConversationRepository, error) {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}
	cache, err := lru.New[string, *memoryConversation](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryConversationRepository{cache: cache, ttl: ttl, now: time.Now}, nil
}

func (r *MemoryConversationRepository) load(conversationID string) (*memoryConversation, bool) {
	c, ok := r.cache.Get(conversationID)
	if !ok {
		return nil, false
	}
	if r.ttl > 0 && !r.now().Before(c.expiresAt) {
		r.cache.Remove(conversationID)
		return nil, false
	}
	return c, true
}

func (r *MemoryConversationRepository) AddMessage(_ context.Context, conversationID string, message *schema.Message) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.load(conversationID)
	if !ok {
		c = &memoryConversation{}
		r.cache.Add(conversationID, c)
	}
	c.messages = append(c.messages, message)
	c.expiresAt = r.now().Add(r.ttl)
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(_ context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := &model.ConversationHistory{ConversationID: conversationID}
	if c, ok := r.load(conversationID); ok {
		history.Messages = append([]*schema.Message(nil), c.messages...)
	}
	return history, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(conversationID)
	return nil
}

func (r *MemoryConversationRepository) GetMessageCount(_ context.Context, conversationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.load(conversationID)
	if !ok {
		return 0, nil
	}
	return len(c.messages), nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
