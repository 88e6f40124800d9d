package provider

import (
	"fmt"

	"go.uber.org/zap"

	"wildwise/config"
	"wildwise/model"
	"wildwise/research"
)

// InitializeAnswerer builds the answerer selected in the configuration.
//
// API keys come from the credential store (or the provider's environment
// variable). LLM backends are wrapped in an Enricher when research is
// enabled; the WildWise service attaches research itself. Image search is
// only wired when a pixabay key is available, otherwise relevant answers get
// the fallback image.
//
// An unusable backend is a startup error; there is exactly one answerer per
// session.
func InitializeAnswerer(cfg *config.Config) (model.Answerer, error) {
	backend, err := ParseBackendType(cfg.Backend.Type)
	if err != nil {
		return nil, err
	}

	a, err := NewAnswerer(Config{
		Type:         backend,
		BaseURL:      cfg.Backend.URL,
		Model:        cfg.Backend.Model,
		APIKey:       cfg.APIKey(string(backend)),
		SystemPrompt: cfg.Backend.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", backend, err)
	}
	config.DebugLog.Info("[Provider] Initialized answerer", zap.String("backend", a.Name()))

	if !backend.IsLLM() || !cfg.Research.Enabled {
		return a, nil
	}

	papers := research.NewScholarClient(cfg.Research.ScholarURL, cfg.Research.Limit, nil)

	var images ImageSearcher
	if key := cfg.APIKey("pixabay"); key != "" {
		images = research.NewPixabayClient(cfg.Research.PixabayURL, key, nil)
	} else {
		config.DebugLog.Info("[Provider] No pixabay key, relevant answers use the fallback image")
	}

	return NewEnricher(a, papers, images, cfg.Research.FallbackImage, config.DebugLog), nil
}
