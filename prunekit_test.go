package prunekit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prunekit/prunekit/hooks"
	"github.com/prunekit/prunekit/prune"
	"github.com/prunekit/prunekit/storage"
	"github.com/prunekit/prunekit/types"
)

func overBudgetConversation() Conversation {
	return Conversation{
		{Role: RoleUser, MessageID: "aaaa0001", Content: "delete me " + strings.Repeat("pad ", 200)},
		{Role: RoleAssistant, MessageID: "aaaa0002", Content: "paired reply"},
		{Role: RoleUser, MessageID: "aaaa0003", Content: "keep me"},
	}
}

func TestPackageLevelPrune(t *testing.T) {
	conv := Conversation{
		{Role: RoleUser, Content: "short question"},
		{Role: RoleAssistant, Content: "short answer"},
	}

	pruned, stats, err := Prune(context.Background(), conv, "50k")
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if len(pruned) != 2 {
		t.Errorf("got %d messages, want 2", len(pruned))
	}
	if stats.BudgetTokens != 50*1024 {
		t.Errorf("BudgetTokens = %d, want %d", stats.BudgetTokens, 50*1024)
	}
}

func TestEngineWithStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "specs.json"))

	spec := types.NewDeletionSpec("conv-1", []string{"aaaa0001"}, "drop first exchange")
	if err := store.SaveSpec(ctx, spec); err != nil {
		t.Fatal(err)
	}

	engine, err := New(&Config{Budget: 10}, WithStore(store))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pruned, stats, err := engine.PruneConversation(ctx, "conv-1", overBudgetConversation())
	if err != nil {
		t.Fatalf("PruneConversation failed: %v", err)
	}
	if stats.MessagesRemovedByIDPruning != 2 {
		t.Errorf("removed = %d, want 2 (pair preservation)", stats.MessagesRemovedByIDPruning)
	}
	for _, msg := range pruned {
		if msg.MessageID == "aaaa0001" || msg.MessageID == "aaaa0002" {
			t.Errorf("message %s should be gone", msg.MessageID)
		}
	}
}

func TestEngineWithoutStore(t *testing.T) {
	engine, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, stats, err := engine.PruneConversation(context.Background(), "conv-1", overBudgetConversation())
	if err != nil {
		t.Fatalf("PruneConversation failed: %v", err)
	}
	if stats.MessagesRemovedByIDPruning != 0 {
		t.Errorf("removed = %d, want 0 without a store", stats.MessagesRemovedByIDPruning)
	}
}

func TestEngineHooks(t *testing.T) {
	registry := hooks.NewRegistry()

	var before, phase, after int
	registry.OnBeforePrune(func(ctx context.Context, conv types.Conversation, spec *types.DeletionSpec) error {
		before++
		return nil
	})
	registry.OnAfterIDPrune(func(conv types.Conversation, removed int, warnings []string) {
		phase++
		if removed != 2 {
			t.Errorf("AfterIDPrune removed = %d, want 2", removed)
		}
	})
	registry.OnAfterPrune(func(ctx context.Context, conv types.Conversation, stats *prune.Stats) error {
		after++
		return nil
	})

	engine, err := New(&Config{Budget: 10}, WithHooks(registry))
	if err != nil {
		t.Fatal(err)
	}

	spec := types.NewDeletionSpec("conv-1", []string{"aaaa0001"}, "")
	if _, _, err := engine.Prune(context.Background(), overBudgetConversation(), spec); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if before != 1 || phase != 1 || after != 1 {
		t.Errorf("hook calls: before=%d id-phase=%d after=%d, want 1 each", before, phase, after)
	}
}

func TestEngineBeforeHookAborts(t *testing.T) {
	registry := hooks.NewRegistry()
	boom := errors.New("not now")
	registry.OnBeforePrune(func(ctx context.Context, conv types.Conversation, spec *types.DeletionSpec) error {
		return boom
	})

	engine, err := New(&Config{Budget: 10}, WithHooks(registry))
	if err != nil {
		t.Fatal(err)
	}

	conv := overBudgetConversation()
	pruned, stats, err := engine.Prune(context.Background(), conv, nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the hook error", err)
	}
	if stats != nil {
		t.Error("no stats expected when the prune was aborted")
	}
	if len(pruned) != len(conv) {
		t.Error("aborted prune should hand the input back")
	}
}

func TestEngineAfterHookErrorIsLogged(t *testing.T) {
	registry := hooks.NewRegistry()
	registry.OnAfterPrune(func(ctx context.Context, conv types.Conversation, stats *prune.Stats) error {
		return errors.New("observer failed")
	})

	engine, err := New(&Config{Budget: 10}, WithHooks(registry))
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := engine.Prune(context.Background(), overBudgetConversation(), nil); err != nil {
		t.Errorf("after-hook errors must not fail the prune: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(&Config{DefaultBudget: -1}); !errors.Is(err, prune.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
