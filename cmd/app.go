package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wildwise/config"
	"wildwise/model"
	"wildwise/provider"
	"wildwise/speech"
	"wildwise/storage"
)

// session is everything one invocation works with. close releases the
// persistence backend and flushes the debug log.
type session struct {
	cfg      *config.Config
	store    *model.Store
	answerer model.Answerer
	turns    *model.TurnController
	speech   *speech.Adapter

	closers []func()
}

// loadConfig applies the persistent flags on top of files and environment
func loadConfig() (*config.Config, error) {
	return config.Load(
		config.WithDataDir(dataDir),
		config.WithBackend(backendFlag),
	)
}

// openSession builds the store from cfg and loads the saved history. The
// answerer and speech adapter are only built when withAnswerer is set, so
// read-only commands work without backend credentials.
func openSession(ctx context.Context, cfg *config.Config, withAnswerer bool) (*session, error) {
	s := &session{cfg: cfg}
	s.closers = append(s.closers, config.InitDebugLog(cfg.DataDir(), verbose))

	persister, closePersister, err := openPersister(cfg)
	if err != nil {
		s.close()
		return nil, err
	}
	if closePersister != nil {
		s.closers = append(s.closers, closePersister)
	}

	s.store = model.NewStore(persister, config.DebugLog)
	s.store.LoadPersisted()

	if !withAnswerer {
		return s, nil
	}

	answerer, err := provider.InitializeAnswerer(cfg)
	if err != nil {
		s.close()
		return nil, err
	}
	s.answerer = answerer

	s.turns = model.NewTurnController(s.store, answerer,
		model.WithTimeout(time.Duration(cfg.Backend.TimeoutSeconds)*time.Second),
		model.WithContext(ctx),
		model.WithLogger(config.DebugLog),
	)

	s.speech = speech.NewAdapter(newRecognizer(cfg), s.store,
		speech.WithLanguage(cfg.Speech.Language),
		speech.WithLogger(config.DebugLog),
	)
	return s, nil
}

// close runs the cleanups in reverse order so the log is flushed last
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func openPersister(cfg *config.Config) (model.HistoryPersister, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		db, err := storage.NewSQLiteStorage(cfg.DatabasePath(), cfg.Storage.SessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}
		return db, func() {
			if err := db.Close(); err != nil {
				config.DebugLog.Warn("[App] failed to close history database", zap.Error(err))
			}
		}, nil
	default:
		sessions, err := storage.NewSessionStorage(cfg.SessionDir(), cfg.Storage.SessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize session storage: %w", err)
		}
		return sessions, nil, nil
	}
}

// newRecognizer returns nil when no speech command is configured, which
// leaves the adapter permanently unavailable
func newRecognizer(cfg *config.Config) speech.Recognizer {
	if cfg.Speech.Command == "" {
		config.DebugLog.Info("[App] no speech command configured")
		return nil
	}
	return speech.NewCommandRecognizer(cfg.Speech.Command, cfg.Speech.Args, config.DebugLog)
}
