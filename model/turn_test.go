package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wildwise/model"
	"wildwise/provider/testutil"
)

func newController(t *testing.T, answerer model.Answerer, opts ...model.TurnOption) (*model.Store, *model.TurnController) {
	t.Helper()
	store := model.NewStore(nil, nil)
	return store, model.NewTurnController(store, answerer, opts...)
}

// runTurn submits the draft and feeds the answer back like the event loop would
func runTurn(t *testing.T, store *model.Store, ctrl *model.TurnController, query string) {
	t.Helper()
	store.SetDraft(query)
	cmd := ctrl.Submit()
	if cmd == nil {
		t.Fatalf("Submit(%q) returned nil command", query)
	}
	raw := cmd()
	msg, ok := raw.(model.AnswerMsg)
	if !ok {
		t.Fatalf("command returned %T, want model.AnswerMsg", raw)
	}
	if !ctrl.HandleAnswer(msg) {
		t.Fatalf("HandleAnswer rejected the answer for %q", query)
	}
}

func TestSubmitSnowLeopard(t *testing.T) {
	answerer := testutil.NewStaticAnswerer(testutil.SnowLeopardResponse())
	store, ctrl := newController(t, answerer)

	runTurn(t, store, ctrl, "Where do snow leopards live?")

	want := []model.Message{
		{Text: "Where do snow leopards live?", Sender: model.SenderUser},
		{
			Text:     "Snow leopards live in the mountains of Central Asia.",
			Sender:   model.SenderBot,
			Research: testutil.SnowLeopardResponse().Research,
		},
	}
	if diff := cmp.Diff(want, store.History(), ignoreTimestamp); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if store.InFlight() {
		t.Error("InFlight() = true after the answer was handled")
	}
	if store.Draft() != "" {
		t.Errorf("Draft() = %q, want cleared", store.Draft())
	}

	if len(answerer.Requests) != 1 {
		t.Fatalf("answerer called %d times, want 1", len(answerer.Requests))
	}
	req := answerer.Requests[0]
	if req.Query != "Where do snow leopards live?" {
		t.Errorf("request query = %q", req.Query)
	}
	if len(req.ChatHistory) != 1 || req.ChatHistory[0].Sender != model.SenderUser {
		t.Errorf("request history should end with the new user message, got %+v", req.ChatHistory)
	}
}

func TestSubmitTrimsQuery(t *testing.T) {
	answerer := testutil.NewMockAnswerer()
	store, ctrl := newController(t, answerer)

	runTurn(t, store, ctrl, "  hello there \n")

	history := store.History()
	if history[0].Text != "hello there" {
		t.Errorf("user message text = %q, want trimmed", history[0].Text)
	}
	if history[1].Text != "echo: hello there" {
		t.Errorf("bot message text = %q", history[1].Text)
	}
}

func TestSubmitEmptyDraftIsNoop(t *testing.T) {
	for _, draft := range []string{"", "   ", "\t\n"} {
		answerer := testutil.NewMockAnswerer()
		store, ctrl := newController(t, answerer)
		store.SetDraft(draft)

		if cmd := ctrl.Submit(); cmd != nil {
			t.Errorf("Submit(%q) returned a command, want nil", draft)
		}
		if store.Len() != 0 || store.InFlight() {
			t.Errorf("Submit(%q) changed state: len=%d inFlight=%v", draft, store.Len(), store.InFlight())
		}
		if store.Draft() != draft {
			t.Errorf("Submit(%q) modified the draft to %q", draft, store.Draft())
		}
		if len(answerer.Requests) != 0 {
			t.Errorf("Submit(%q) reached the answerer", draft)
		}
	}
}

func TestSubmitGatedWhileInFlight(t *testing.T) {
	answerer := testutil.NewMockAnswerer()
	store, ctrl := newController(t, answerer)

	store.SetDraft("first")
	cmd := ctrl.Submit()
	if cmd == nil {
		t.Fatal("first Submit returned nil")
	}

	store.SetDraft("second")
	if again := ctrl.Submit(); again != nil {
		t.Fatal("second Submit accepted while a request is in flight")
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d while in flight, want 1", store.Len())
	}
	if store.Draft() != "second" {
		t.Errorf("rejected submit cleared the draft: %q", store.Draft())
	}

	ctrl.HandleAnswer(cmd().(model.AnswerMsg))

	if ctrl.Submit() == nil {
		t.Error("Submit rejected after the gate reopened")
	}
}

func TestHistoryGrowsByTwoPerTurn(t *testing.T) {
	answerer := testutil.NewMockAnswerer()
	store, ctrl := newController(t, answerer)

	queries := []string{"one", "two", "three", "four"}
	var previous []model.Message
	for i, q := range queries {
		runTurn(t, store, ctrl, q)

		history := store.History()
		if len(history) != 2*(i+1) {
			t.Fatalf("after %d turns Len() = %d, want %d", i+1, len(history), 2*(i+1))
		}
		if diff := cmp.Diff(previous, history[:len(previous)]); len(previous) > 0 && diff != "" {
			t.Fatalf("earlier messages changed after turn %d (-want +got):\n%s", i+1, diff)
		}
		previous = history
	}

	for i, msg := range store.History() {
		wantSender := model.SenderUser
		if i%2 == 1 {
			wantSender = model.SenderBot
		}
		if msg.Sender != wantSender {
			t.Errorf("message %d sender = %s, want %s", i, msg.Sender, wantSender)
		}
	}
}

func TestFailuresAppendErrorReply(t *testing.T) {
	tests := []struct {
		name     string
		answerer model.Answerer
	}{
		{"TransportError", testutil.NewFailingAnswerer(nil)},
		{"NilResponse", &testutil.MockAnswerer{
			AnswerFunc: func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
				return nil, nil
			},
		}},
		{"NoAnswerer", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, ctrl := newController(t, tt.answerer)
			runTurn(t, store, ctrl, "Where do red pandas live?")

			last, _ := store.Last()
			want := model.Message{Text: model.ErrorReply, Sender: model.SenderBot, Failed: true}
			if diff := cmp.Diff(want, last, ignoreTimestamp); diff != "" {
				t.Errorf("last message mismatch (-want +got):\n%s", diff)
			}
			if store.InFlight() {
				t.Error("InFlight() = true after failure")
			}
		})
	}
}

func TestFailureThenSuccessKeepsOrder(t *testing.T) {
	calls := 0
	answerer := &testutil.MockAnswerer{
		AnswerFunc: func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection refused")
			}
			return &model.AnswerResponse{Answer: "recovered"}, nil
		},
	}
	store, ctrl := newController(t, answerer)

	runTurn(t, store, ctrl, "first")
	runTurn(t, store, ctrl, "second")

	var texts []string
	for _, msg := range store.History() {
		texts = append(texts, msg.Text)
	}
	want := []string{"first", model.ErrorReply, "second", "recovered"}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Errorf("history texts mismatch (-want +got):\n%s", diff)
	}

	// The failed reply stays in the history sent to the service
	if got := len(answerer.Requests[1].ChatHistory); got != 3 {
		t.Errorf("second request carried %d messages, want 3", got)
	}
}

func TestRequestTimeout(t *testing.T) {
	answerer := &testutil.MockAnswerer{
		AnswerFunc: func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	store, ctrl := newController(t, answerer, model.WithTimeout(20*time.Millisecond))

	store.SetDraft("slow question")
	msg := ctrl.Submit()().(model.AnswerMsg)
	if !errors.Is(msg.Err, context.DeadlineExceeded) {
		t.Fatalf("Err = %v, want deadline exceeded", msg.Err)
	}
	ctrl.HandleAnswer(msg)

	last, _ := store.Last()
	if !last.Failed {
		t.Errorf("timed-out turn should end with the error reply, got %+v", last)
	}
}

func TestCancelledParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	answerer := &testutil.MockAnswerer{
		AnswerFunc: func(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
			return nil, ctx.Err()
		},
	}
	store, ctrl := newController(t, answerer, model.WithContext(ctx), model.WithTimeout(0))

	runTurn(t, store, ctrl, "anyone there?")

	if last, _ := store.Last(); !last.Failed {
		t.Errorf("cancelled turn should end with the error reply, got %+v", last)
	}
}

func TestStaleAnswerIgnored(t *testing.T) {
	answerer := testutil.NewMockAnswerer()
	store, ctrl := newController(t, answerer)

	// Nothing in flight
	if ctrl.HandleAnswer(model.AnswerMsg{Turn: 1, Response: &model.AnswerResponse{Answer: "ghost"}}) {
		t.Fatal("HandleAnswer applied an answer with nothing in flight")
	}

	store.SetDraft("real")
	cmd := ctrl.Submit()

	// Wrong sequence number
	if ctrl.HandleAnswer(model.AnswerMsg{Turn: 99, Response: &model.AnswerResponse{Answer: "ghost"}}) {
		t.Fatal("HandleAnswer applied an answer for another turn")
	}
	if !store.InFlight() || store.Len() != 1 {
		t.Fatalf("stale answer changed state: len=%d inFlight=%v", store.Len(), store.InFlight())
	}

	msg := cmd().(model.AnswerMsg)
	if !ctrl.HandleAnswer(msg) {
		t.Fatal("HandleAnswer rejected the genuine answer")
	}
	if ctrl.HandleAnswer(msg) {
		t.Error("HandleAnswer applied the same answer twice")
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
}

func TestSubmitPersistsEachAppend(t *testing.T) {
	persister := testutil.NewMemoryPersister(nil)
	store := model.NewStore(persister, nil)
	ctrl := model.NewTurnController(store, testutil.NewMockAnswerer())

	runTurn(t, store, ctrl, "persist me")

	if len(persister.Saved) != 2 {
		t.Fatalf("Save called %d times, want 2", len(persister.Saved))
	}
	if len(persister.Saved[0]) != 1 || len(persister.Saved[1]) != 2 {
		t.Errorf("snapshot sizes = %d, %d; want 1, 2", len(persister.Saved[0]), len(persister.Saved[1]))
	}
}

func TestSubmitAndWait(t *testing.T) {
	store, ctrl := newController(t, testutil.NewMockAnswerer())

	if ctrl.SubmitAndWait() {
		t.Error("SubmitAndWait accepted an empty draft")
	}

	store.SetDraft("inline")
	if !ctrl.SubmitAndWait() {
		t.Fatal("SubmitAndWait rejected a valid draft")
	}
	if store.Len() != 2 || store.InFlight() {
		t.Errorf("after SubmitAndWait len=%d inFlight=%v", store.Len(), store.InFlight())
	}
	if ctrl.Backend() != "mock" {
		t.Errorf("Backend() = %q, want mock", ctrl.Backend())
	}
}
