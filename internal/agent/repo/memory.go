package repo

import (
	"container/list"
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/gamenerd/server/internal/agent/model"
	logx "github.com/gamenerd/server/pkg/logger"
)

// MemoryConversationRepository is an in-process history store for local runs
// and tests. Distinct users are bounded by an LRU: when maxSessions is
// exceeded, the least recently touched user's history is evicted whole.
type MemoryConversationRepository struct {
	mu          sync.Mutex
	sessions    map[string]*list.Element
	order       *list.List // front = most recently used
	maxSessions int
}

type sessionEntry struct {
	userID   string
	messages []*schema.Message
}

func NewMemoryConversationRepository(maxSessions int) *MemoryConversationRepository {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	return &MemoryConversationRepository{
		sessions:    make(map[string]*list.Element),
		order:       list.New(),
		maxSessions: maxSessions,
	}
}

// touch moves or inserts the user's entry at the front, evicting the oldest
// session when over capacity. Caller holds mu.
func (r *MemoryConversationRepository) touch(userID string) *sessionEntry {
	if el, ok := r.sessions[userID]; ok {
		r.order.MoveToFront(el)
		return el.Value.(*sessionEntry)
	}
	entry := &sessionEntry{userID: userID}
	r.sessions[userID] = r.order.PushFront(entry)

	for r.order.Len() > r.maxSessions {
		oldest := r.order.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*sessionEntry)
		r.order.Remove(oldest)
		delete(r.sessions, evicted.userID)
		logx.Debug().Str("user_id", evicted.userID).Msg("evicted least recently used session")
	}
	return entry
}

func (r *MemoryConversationRepository) AddMessage(ctx context.Context, userID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.touch(userID)
	entry.messages = append(entry.messages, message)
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(ctx context.Context, userID string) (*model.ConversationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	el, ok := r.sessions[userID]
	if !ok {
		return &model.ConversationHistory{ConversationID: userID, Messages: []*schema.Message{}}, nil
	}
	r.order.MoveToFront(el)
	entry := el.Value.(*sessionEntry)

	msgs := make([]*schema.Message, len(entry.messages))
	copy(msgs, entry.messages)
	return &model.ConversationHistory{ConversationID: userID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) TrimHistory(ctx context.Context, userID string, max int) error {
	if max <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	el, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	entry := el.Value.(*sessionEntry)
	if len(entry.messages) > max {
		trimmed := make([]*schema.Message, max)
		copy(trimmed, entry.messages[len(entry.messages)-max:])
		entry.messages = trimmed
	}
	return nil
}

func (r *MemoryConversationRepository) ClearHistory(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.sessions[userID]; ok {
		r.order.Remove(el)
		delete(r.sessions, userID)
	}
	return nil
}

func (r *MemoryConversationRepository) MessageCount(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	el, ok := r.sessions[userID]
	if !ok {
		return 0, nil
	}
	return len(el.Value.(*sessionEntry).messages), nil
}

// SessionCount reports the number of distinct users currently stored.
func (r *MemoryConversationRepository) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
