package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"wildwise/model"
)

// newTestHome isolates config lookups and returns a fresh data directory
func newTestHome(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"WILDWISE_DATA_DIR", "WILDWISE_BACKEND", "WILDWISE_BACKEND_URL",
		"WILDWISE_MODEL", "WILDWISE_SPEECH_COMMAND", "WILDWISE_DEBUG",
	} {
		t.Setenv(name, "")
	}
	return t.TempDir()
}

// execute runs the root command with args and returns what it printed to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single Execute
	verbose, dataDir, backendFlag = false, "", ""
	askVoice, historyFormat, exportFormat = false, "markdown", "json"
	// and so do cobra's own help and version flags
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				f.Value.Set("false")
				f.Changed = false
			}
		}
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// answeringService serves a fixed answer and records the queries it was asked
func answeringService(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		queries = append(queries, req.Query)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("WILDWISE_BACKEND_URL", srv.URL)
	return srv, &queries
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{
			name:     "version flag",
			args:     []string{"--version"},
			contains: "dev",
		},
		{
			name:     "help flag",
			args:     []string{"--help"},
			contains: "wildwise ask",
		},
		{
			name:     "ask help",
			args:     []string{"ask", "--help"},
			contains: "--voice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestHome(t)
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("output missing %q:\n%s", tt.contains, out)
			}
		})
	}
}

func TestCommandAfterHelpAndVersion(t *testing.T) {
	dir := newTestHome(t)
	answeringService(t, http.StatusOK, `{"answer":"Pangolins eat ants.","research":null}`)

	for _, args := range [][]string{{"ask", "--help"}, {"--help"}, {"--version"}} {
		if _, err := execute(t, args...); err != nil {
			t.Fatalf("%v error = %v", args, err)
		}
	}

	out, err := execute(t, "ask", "--data-dir", dir, "What do pangolins eat?")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "Pangolins eat ants.") {
		t.Errorf("ask printed help or version instead of the answer:\n%s", out)
	}
}

func TestSetVersionInfo(t *testing.T) {
	defer SetVersionInfo(version, license)

	SetVersionInfo("v9.9.9", "MIT")
	newTestHome(t)
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "v9.9.9 (MIT)" {
		t.Errorf("version output = %q", out)
	}
}

func TestAskPrintsAnswer(t *testing.T) {
	dir := newTestHome(t)
	_, queries := answeringService(t, http.StatusOK,
		`{"answer":"Snow leopards live in the mountains of Central Asia.","research":[],"image_url":"https://example.org/leopard.jpg"}`)

	out, err := execute(t, "ask", "--data-dir", dir, "Where", "do", "snow", "leopards", "live?")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}

	for _, want := range []string{
		"Snow leopards live in the mountains of Central Asia.",
		"No research papers found.",
		"Image: https://example.org/leopard.jpg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if diff := cmp.Diff([]string{"Where do snow leopards live?"}, *queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}

	// The turn was persisted
	out, err = execute(t, "history", "--data-dir", dir, "--format", "json")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	var history []model.Message
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("history is not JSON: %v\n%s", err, out)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Sender != model.SenderUser || history[0].Text != "Where do snow leopards live?" {
		t.Errorf("first message = %+v", history[0])
	}
	if history[1].Sender != model.SenderBot || !history[1].HasResearch() || len(history[1].Research) != 0 {
		t.Errorf("second message = %+v", history[1])
	}
}

func TestAskFailedTurn(t *testing.T) {
	dir := newTestHome(t)
	answeringService(t, http.StatusInternalServerError, `{"error":"boom"}`)

	out, err := execute(t, "ask", "--data-dir", dir, "What do pangolins eat?")
	if !errors.Is(err, errAnswerFailed) {
		t.Fatalf("err = %v, want errAnswerFailed", err)
	}
	if !strings.Contains(out, model.ErrorReply) {
		t.Errorf("output should show the error reply:\n%s", out)
	}
}

func TestAskErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		errText string
	}{
		{
			name:    "no question",
			args:    []string{"ask"},
			wantErr: errNoQuestion,
		},
		{
			name:    "blank question",
			args:    []string{"ask", "   "},
			wantErr: errNoQuestion,
		},
		{
			name:    "voice without speech command",
			args:    []string{"ask", "--voice"},
			errText: "speech capture unavailable",
		},
		{
			name:    "unknown backend",
			args:    []string{"ask", "--backend", "carrier-pigeon", "hello"},
			errText: "carrier-pigeon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newTestHome(t)
			_, err := execute(t, append(tt.args, "--data-dir", dir)...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("err = %v, want it to mention %q", err, tt.errText)
			}
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "empty json", format: "json", want: "[]"},
		{name: "empty markdown", format: "markdown", want: "WildWise"},
		{name: "invalid format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newTestHome(t)
			out, err := execute(t, "history", "--data-dir", dir, "--format", tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("history error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	dir := newTestHome(t)
	answeringService(t, http.StatusOK, `{"answer":"Red pandas eat mostly bamboo."}`)

	if _, err := execute(t, "ask", "--data-dir", dir, "What do red pandas eat?"); err != nil {
		t.Fatalf("ask error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "conversation.yaml")
	out, err := execute(t, "export", "--data-dir", dir, path)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "Exported 2 messages") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(data), "Red pandas eat mostly bamboo.") {
		t.Errorf("export content:\n%s", data)
	}

	if _, err := execute(t, "export", "--data-dir", dir, filepath.Join(t.TempDir(), "conversation.txt")); err == nil {
		t.Error("an unknown extension should be rejected")
	}
}

func TestExportDefaultPath(t *testing.T) {
	dir := newTestHome(t)

	out, err := execute(t, "export", "--data-dir", dir, "--format", "markdown")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, filepath.Join(os.Getenv("HOME"), "Downloads")) || !strings.Contains(out, ".md") {
		t.Errorf("output = %q", out)
	}
}
