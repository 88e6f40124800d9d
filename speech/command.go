package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LanguagePlaceholder in a configured argument is replaced by Options.Language
const LanguagePlaceholder = "{lang}"

// CommandRecognizer runs an external speech-to-text program for each
// activation. The program records one utterance and prints candidate
// transcriptions on stdout, best first, one per line.
type CommandRecognizer struct {
	command string
	args    []string
	log     *zap.Logger
}

// NewCommandRecognizer creates a recognizer for command. An empty command is
// never available.
func NewCommandRecognizer(command string, args []string, log *zap.Logger) *CommandRecognizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandRecognizer{
		command: command,
		args:    append([]string(nil), args...),
		log:     log,
	}
}

// Available reports whether the command resolves on PATH
func (r *CommandRecognizer) Available() bool {
	if r == nil || r.command == "" {
		return false
	}
	_, err := exec.LookPath(r.command)
	return err == nil
}

// Start launches the command in the background and returns its event channel
func (r *CommandRecognizer) Start(ctx context.Context, opts Options) (<-chan Event, error) {
	if !r.Available() {
		return nil, fmt.Errorf("speech command %q: %w", r.command, ErrUnavailable)
	}

	args := make([]string, len(r.args))
	for i, arg := range r.args {
		args[i] = strings.ReplaceAll(arg, LanguagePlaceholder, opts.language())
	}

	// Room for one outcome plus the end event, so run never blocks.
	events := make(chan Event, 2)
	go r.run(ctx, args, opts.MaxAlternatives, events)
	return events, nil
}

func (r *CommandRecognizer) run(ctx context.Context, args []string, maxAlternatives int, events chan<- Event) {
	defer close(events)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	r.log.Debug("[Speech] command finished",
		zap.String("command", r.command),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	switch {
	case ctx.Err() != nil:
		events <- Event{Kind: EventError, Code: ErrorAborted, Err: ctx.Err()}
	case err != nil:
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		events <- Event{Kind: EventError, Code: ErrorAudioCapture, Err: fmt.Errorf("speech command failed: %w", err)}
	default:
		alternatives := parseAlternatives(stdout.String(), maxAlternatives)
		if len(alternatives) == 0 {
			events <- Event{Kind: EventError, Code: ErrorNoSpeech}
		} else {
			events <- Event{Kind: EventResult, Results: []Result{{Alternatives: alternatives}}}
		}
	}

	events <- Event{Kind: EventEnd}
}

// parseAlternatives keeps non-blank lines verbatim apart from the line ending
func parseAlternatives(output string, max int) []Alternative {
	var alternatives []Alternative
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		alternatives = append(alternatives, Alternative{Transcript: line})
		if max > 0 && len(alternatives) == max {
			break
		}
	}
	return alternatives
}
