package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wildwise/model"
	"wildwise/provider/testutil"
	"wildwise/storage"
)

// Compile-time interface checks
var (
	_ model.HistoryPersister = (*storage.SessionStorage)(nil)
	_ model.HistoryPersister = (*storage.SQLiteStorage)(nil)
)

type persisterFactory func(t *testing.T, dir, sessionID string) model.HistoryPersister

var persisters = map[string]persisterFactory{
	"json": func(t *testing.T, dir, sessionID string) model.HistoryPersister {
		s, err := storage.NewSessionStorage(filepath.Join(dir, "sessions"), sessionID)
		if err != nil {
			t.Fatalf("NewSessionStorage() error = %v", err)
		}
		return s
	},
	"sqlite": func(t *testing.T, dir, sessionID string) model.HistoryPersister {
		s, err := storage.NewSQLiteStorage(filepath.Join(dir, "wildwise.db"), sessionID)
		if err != nil {
			t.Fatalf("NewSQLiteStorage() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	},
}

// TestPersisterContract defines the contract every history persister must satisfy.
func TestPersisterContract(t *testing.T) {
	for name, newPersister := range persisters {
		t.Run(name, func(t *testing.T) {
			t.Run("NothingSaved", func(t *testing.T) {
				p := newPersister(t, t.TempDir(), "wildwise-chat")
				if _, err := p.Load(); !errors.Is(err, model.ErrNoHistory) {
					t.Errorf("Load() error = %v, want ErrNoHistory", err)
				}
			})

			t.Run("RoundTrip", func(t *testing.T) {
				dir := t.TempDir()
				want := testutil.TestHistory()
				if err := newPersister(t, dir, "wildwise-chat").Save(want); err != nil {
					t.Fatalf("Save() error = %v", err)
				}

				got, err := newPersister(t, dir, "wildwise-chat").Load()
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}

				// absent and empty research lists stay distinct
				if got[0].Research != nil {
					t.Error("user message gained a research list")
				}
				if got[5].Research == nil || len(got[5].Research) != 0 {
					t.Errorf("empty research list = %#v, want non-nil empty", got[5].Research)
				}
			})

			t.Run("EmptyHistory", func(t *testing.T) {
				p := newPersister(t, t.TempDir(), "wildwise-chat")
				if err := p.Save([]model.Message{}); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
				got, err := p.Load()
				if err != nil {
					t.Fatalf("Load() error = %v, want saved empty history", err)
				}
				if got == nil || len(got) != 0 {
					t.Errorf("Load() = %#v, want empty non-nil history", got)
				}
			})

			t.Run("SaveReplacesSnapshot", func(t *testing.T) {
				p := newPersister(t, t.TempDir(), "wildwise-chat")
				history := testutil.TestHistory()
				if err := p.Save(history); err != nil {
					t.Fatal(err)
				}
				if err := p.Save(history[:2]); err != nil {
					t.Fatal(err)
				}
				got, err := p.Load()
				if err != nil {
					t.Fatal(err)
				}
				if diff := cmp.Diff(history[:2], got); diff != "" {
					t.Errorf("second save not authoritative (-want +got):\n%s", diff)
				}
			})

			t.Run("SessionKeysAreIsolated", func(t *testing.T) {
				dir := t.TempDir()
				if err := newPersister(t, dir, "a").Save(testutil.TestHistory()); err != nil {
					t.Fatal(err)
				}
				if _, err := newPersister(t, dir, "b").Load(); !errors.Is(err, model.ErrNoHistory) {
					t.Errorf("other session Load() error = %v, want ErrNoHistory", err)
				}
			})

			t.Run("StorePersistsEveryAppend", func(t *testing.T) {
				dir := t.TempDir()
				store := model.NewStore(newPersister(t, dir, "wildwise-chat"), nil)
				store.LoadPersisted()
				store.Append(model.NewUserMessage("Where do snow leopards live?"))
				store.Append(model.NewBotMessage(testutil.SnowLeopardResponse()))

				reloaded := model.NewStore(newPersister(t, dir, "wildwise-chat"), nil)
				reloaded.LoadPersisted()
				if diff := cmp.Diff(store.History(), reloaded.History()); diff != "" {
					t.Errorf("reloaded history mismatch (-want +got):\n%s", diff)
				}
			})
		})
	}
}

func TestSessionStorageFile(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewSessionStorage(dir, "wild/wise chat")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "wild-wise-chat.json"); s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}

	if err := s.Save(testutil.TestHistory()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("session file mode = %o, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("sessions dir has %d entries, want only the session file", len(entries))
	}
}

func TestSessionStorageCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := storage.NewSessionStorage(dir, "wildwise-chat")
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load()
	if err == nil || errors.Is(err, model.ErrNoHistory) {
		t.Errorf("Load() error = %v, want a decode error", err)
	}

	// The store falls back to an empty history
	store := model.NewStore(s, nil)
	store.LoadPersisted()
	if store.Len() != 0 {
		t.Errorf("Len() = %d after corrupt load, want 0", store.Len())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"wildwise-chat", "wildwise-chat"},
		{"a/b\\c:d", "a-b-c-d"},
		{"..hidden..", "hidden"},
		{"", "session"},
		{"???", "session"},
	}
	for _, tt := range tests {
		if got := storage.SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
