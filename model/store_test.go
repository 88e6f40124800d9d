package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"wildwise/model"
	"wildwise/provider/testutil"
)

var ignoreTimestamp = cmpopts.IgnoreFields(model.Message{}, "Timestamp")

func TestStoreLoadPersisted(t *testing.T) {
	history := testutil.TestHistory()

	tests := []struct {
		name      string
		persister model.HistoryPersister
		want      []model.Message
	}{
		{"NoPersister", nil, []model.Message{}},
		{"NothingSaved", testutil.NewMemoryPersister(nil), []model.Message{}},
		{"EmptySaved", testutil.NewMemoryPersister([]model.Message{}), []model.Message{}},
		{"Saved", testutil.NewMemoryPersister(history), history},
		{"LoadError", &testutil.MemoryPersister{LoadErr: errors.New("corrupt file")}, []model.Message{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := model.NewStore(tt.persister, nil)
			store.LoadPersisted()

			got := store.History()
			if got == nil {
				t.Fatal("History() returned nil, want empty slice")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("History() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreAppendPersistsFullHistoryOnce(t *testing.T) {
	persister := testutil.NewMemoryPersister(nil)
	store := model.NewStore(persister, nil)
	store.LoadPersisted()

	first := model.NewUserMessage("hello")
	second := model.NewBotMessage(model.AnswerResponse{Answer: "hi"})
	store.Append(first)
	store.Append(second)

	if len(persister.Saved) != 2 {
		t.Fatalf("Save called %d times, want 2", len(persister.Saved))
	}
	if diff := cmp.Diff([]model.Message{first}, persister.Saved[0]); diff != "" {
		t.Errorf("first snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.Message{first, second}, persister.Saved[1]); diff != "" {
		t.Errorf("second snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreAppendSwallowsSaveError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	persister := &testutil.MemoryPersister{SaveErr: errors.New("disk full")}
	store := model.NewStore(persister, zap.New(core))

	store.Append(model.NewUserMessage("still here"))

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if logs.FilterMessageSnippet("failed to persist").Len() != 1 {
		t.Errorf("expected one persistence warning, got %v", logs.All())
	}
}

func TestStoreObserversSeeEveryAppend(t *testing.T) {
	store := model.NewStore(nil, nil)

	var lengths []int
	store.OnHistoryChange(func(history []model.Message) {
		lengths = append(lengths, len(history))
	})
	store.OnHistoryChange(nil)

	store.Append(model.NewUserMessage("a"))
	store.Append(model.NewUserMessage("b"))
	store.Append(model.NewUserMessage("c"))

	if diff := cmp.Diff([]int{1, 2, 3}, lengths); diff != "" {
		t.Errorf("observer lengths mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreHistoryIsACopy(t *testing.T) {
	store := model.NewStore(nil, nil)
	store.Append(model.NewBotMessage(model.AnswerResponse{
		Answer:   "answer",
		Research: []model.ResearchItem{{Title: "t", URL: "u"}},
	}))

	snapshot := store.History()
	snapshot[0].Text = "mutated"
	snapshot[0].Research[0].Title = "mutated"

	got, ok := store.Last()
	if !ok {
		t.Fatal("Last() returned no message")
	}
	if got.Text != "answer" || got.Research[0].Title != "t" {
		t.Errorf("stored message was mutated through a snapshot: %+v", got)
	}
}

func TestStoreDraftAndCaptureState(t *testing.T) {
	store := model.NewStore(nil, nil)

	if store.Draft() != "" {
		t.Errorf("initial Draft() = %q, want empty", store.Draft())
	}
	store.SetDraft("  spaced  ")
	if store.Draft() != "  spaced  " {
		t.Errorf("Draft() = %q, want verbatim overwrite", store.Draft())
	}

	if store.CaptureState() != model.CaptureIdle {
		t.Errorf("initial CaptureState() = %v, want idle", store.CaptureState())
	}
	store.SetCaptureState(model.CaptureListening)
	if store.CaptureState().String() != "listening" {
		t.Errorf("CaptureState() = %v, want listening", store.CaptureState())
	}

	if _, ok := store.Last(); ok {
		t.Error("Last() on empty history reported a message")
	}
}
