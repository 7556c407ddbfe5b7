package orchestration

import (
	"fmt"
	"sync"
	"testing"
)

func TestConversationLogPreservesArrivalOrder(t *testing.T) {
	log := newConversationLog()

	log.Append(TurnRoleUser, "what is the capital of france?")
	log.Append(TurnRoleAssistant, "Paris.")

	turns := log.Snapshot()
	if len(turns) != 2 {
		t.Fatalf("expected two turns, got %d", len(turns))
	}
	if turns[0].Role != TurnRoleUser || turns[0].Content != "what is the capital of france?" {
		t.Fatalf("unexpected first turn: %#v", turns[0])
	}
	if turns[1].Role != TurnRoleAssistant || turns[1].Content != "Paris." {
		t.Fatalf("unexpected second turn: %#v", turns[1])
	}
	if turns[0].ID == turns[1].ID {
		t.Fatalf("expected unique turn ids")
	}
	if turns[0].CreatedAt.IsZero() {
		t.Fatalf("expected turns to be timestamped")
	}
}

func TestConversationLogSnapshotIsDetached(t *testing.T) {
	log := newConversationLog()
	log.Append(TurnRoleUser, "hello")

	snapshot := log.Snapshot()
	log.Append(TurnRoleAssistant, "hi there")

	if len(snapshot) != 1 {
		t.Fatalf("expected the snapshot to keep its length, got %d", len(snapshot))
	}

	snapshot[0].Content = "mutated"
	if got := log.Snapshot()[0].Content; got != "hello" {
		t.Fatalf("expected the log to be unaffected by snapshot mutation, got %q", got)
	}
}

func TestConversationLogLastAssistantContent(t *testing.T) {
	log := newConversationLog()

	if got := log.LastAssistantContent(); got != "" {
		t.Fatalf("expected no assistant content yet, got %q", got)
	}

	log.Append(TurnRoleUser, "first question")
	log.Append(TurnRoleAssistant, "first answer")
	log.Append(TurnRoleUser, "second question")
	log.Append(TurnRoleAssistant, "second answer")
	log.Append(TurnRoleUser, "third question")

	if got := log.LastAssistantContent(); got != "second answer" {
		t.Fatalf("expected the latest assistant turn, got %q", got)
	}
}

func TestConversationLogConcurrentAppends(t *testing.T) {
	log := newConversationLog()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				log.Append(TurnRoleUser, fmt.Sprintf("worker %d turn %d", worker, j))
			}
		}(i)
	}
	wg.Wait()

	if got := log.Len(); got != 200 {
		t.Fatalf("expected 200 turns, got %d", got)
	}
}
