package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wildwise/model"
	"wildwise/research"
)

// PaperSearcher finds research items for a query
type PaperSearcher interface {
	Search(ctx context.Context, query string) ([]model.ResearchItem, error)
}

// ImageSearcher finds one image URL for a query ("" when there is none)
type ImageSearcher interface {
	FirstImage(ctx context.Context, query string) (string, error)
}

// Enricher wraps an answerer and attaches research papers and an image to
// answers for wildlife-related queries.
//
// The answer, the paper search and the image search run concurrently. Only
// the answer can fail the request; a failed search is logged and leaves the
// corresponding field absent.
type Enricher struct {
	next          model.Answerer
	papers        PaperSearcher
	images        ImageSearcher
	fallbackImage string
	log           *zap.Logger
}

// NewEnricher creates an enricher around next. papers may be nil to skip
// the paper search. With a nil images searcher every relevant answer gets
// fallbackImage.
func NewEnricher(next model.Answerer, papers PaperSearcher, images ImageSearcher, fallbackImage string, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{
		next:          next,
		papers:        papers,
		images:        images,
		fallbackImage: fallbackImage,
		log:           log,
	}
}

// Answer implements model.Answerer.
func (e *Enricher) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	if !research.IsRelevant(req.Query) {
		return e.next.Answer(ctx, req)
	}

	var (
		resp     *model.AnswerResponse
		papers   []model.ResearchItem
		imageURL string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		resp, err = e.next.Answer(gctx, req)
		return err
	})

	if e.papers != nil {
		g.Go(func() error {
			items, err := e.papers.Search(gctx, req.Query)
			if err != nil {
				e.log.Warn("[Research] paper search failed", zap.Error(err))
				return nil
			}
			papers = items
			return nil
		})
	}

	if e.images == nil {
		imageURL = e.fallbackImage
	} else {
		g.Go(func() error {
			url, err := e.images.FirstImage(gctx, req.Query)
			if err != nil {
				e.log.Warn("[Research] image search failed", zap.Error(err))
				return nil
			}
			if url == "" {
				url = e.fallbackImage
			}
			imageURL = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%s returned no answer", e.next.Name())
	}

	out := *resp
	if papers != nil {
		out.Research = papers
	}
	if imageURL != "" {
		out.ImageURL = imageURL
	}

	e.log.Debug("[Research] answer enriched",
		zap.Int("papers", len(out.Research)),
		zap.Bool("image", out.ImageURL != ""))

	return &out, nil
}

// Name implements model.Answerer.
func (e *Enricher) Name() string {
	return e.next.Name()
}

// Ping implements Pinger when the wrapped answerer does.
func (e *Enricher) Ping(ctx context.Context) error {
	if p, ok := e.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
