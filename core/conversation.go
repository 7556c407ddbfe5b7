package orchestration

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one utterance/reply entry in the conversation record. Immutable
// once created.
type Turn struct {
	ID        string    `json:"id"`
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// conversationLog is the append-only ordered record of user and assistant
// turns. No caller removes entries; ordering is arrival order.
type conversationLog struct {
	mu    sync.RWMutex
	turns []Turn
}

func newConversationLog() *conversationLog {
	return &conversationLog{}
}

func (l *conversationLog) Append(role TurnRole, content string) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	l.mu.Unlock()

	return turn
}

// Snapshot returns a point-in-time copy of the log. Consumers may iterate it
// freely while appends continue.
func (l *conversationLog) Snapshot() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]Turn, 0, len(l.turns))
	if err := copier.Copy(&snapshot, l.turns); err != nil {
		// Turn holds only value fields, so a plain copy is equivalent.
		snapshot = append(snapshot[:0], l.turns...)
	}
	return snapshot
}

func (l *conversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.turns)
}

// LastAssistantContent returns the content of the most recent assistant turn,
// or "" when none exists.
func (l *conversationLog) LastAssistantContent() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == TurnRoleAssistant {
			return l.turns[i].Content
		}
	}
	return ""
}
