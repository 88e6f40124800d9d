package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wildwise/config"
	"wildwise/storage"
	"wildwise/ui"
)

// errAborted is returned when the user leaves a startup modal without starting a session
var errAborted = errors.New("startup aborted")

func runInteractive(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		showModal(ui.NewErrorModal("Configuration Error", err.Error()))
		return err
	}

	lock := storage.NewInstanceLock(cfg.DataDir())
	if err := claimInstanceLock(lock); err != nil {
		if errors.Is(err, errAborted) {
			return nil
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			config.DebugLog.Warn("[App] failed to release instance lock", zap.Error(err))
		}
	}()

	s, err := openSession(ctx, cfg, true)
	if err != nil {
		showModal(ui.NewErrorModal("Startup Error", err.Error()))
		return err
	}
	defer s.close()

	return runProgram(ctx, s)
}

// claimInstanceLock takes the data directory lock. When another live instance
// holds it, the user decides between exiting and forcing the lock.
func claimInstanceLock(lock *storage.InstanceLock) error {
	pid, err := lock.Holder()
	if err != nil {
		return fmt.Errorf("failed to check instance lock: %w", err)
	}
	if pid != 0 {
		final := showModal(ui.NewInstanceLockedModal(pid))
		locked, ok := final.(ui.InstanceLockedModal)
		if !ok || !locked.ForceDelete() {
			return errAborted
		}
		if err := lock.Release(); err != nil {
			return fmt.Errorf("failed to remove lock file: %w", err)
		}
	}

	if err := lock.Acquire(); err != nil {
		return fmt.Errorf("failed to lock data directory: %w", err)
	}
	return nil
}

func runProgram(ctx context.Context, s *session) error {
	view := ui.NewAppView(ui.Deps{
		Store:       s.store,
		Turns:       s.turns,
		Speech:      s.speech,
		Answerer:    s.answerer,
		Keybindings: s.cfg.Keybindings,
		Context:     ctx,
		Version:     version,
	})

	config.DebugLog.Info("[App] starting interactive session",
		zap.String("backend", s.turns.Backend()),
		zap.String("storage", s.cfg.Storage.Backend),
		zap.Int("history", s.store.Len()))

	p := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running wildwise: %w", err)
	}
	return nil
}

// showModal runs a standalone modal program and returns its final model
func showModal(m tea.Model) tea.Model {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return final
}
