package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wildwise/model"
	"wildwise/provider"
	"wildwise/provider/testutil"
)

const fallbackImage = "https://example.org/fallback.jpg"

type stubPapers struct {
	items []model.ResearchItem
	err   error
	calls int
}

func (s *stubPapers) Search(ctx context.Context, query string) ([]model.ResearchItem, error) {
	s.calls++
	return s.items, s.err
}

type stubImages struct {
	url   string
	err   error
	calls int
}

func (s *stubImages) FirstImage(ctx context.Context, query string) (string, error) {
	s.calls++
	return s.url, s.err
}

var leopardPapers = []model.ResearchItem{{Title: "Snow Leopard Range", URL: "https://example.org/a", Abstract: "..."}}

func TestEnricherRelevantQuery(t *testing.T) {
	papers := &stubPapers{items: leopardPapers}
	images := &stubImages{url: "https://example.org/leopard.jpg"}
	e := provider.NewEnricher(testutil.NewStaticAnswerer(model.AnswerResponse{Answer: "They live high up."}), papers, images, fallbackImage, nil)

	resp, err := e.Answer(context.Background(), model.AnswerRequest{Query: "What is the habitat of snow leopards?"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	want := &model.AnswerResponse{
		Answer:   "They live high up.",
		Research: leopardPapers,
		ImageURL: "https://example.org/leopard.jpg",
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestEnricherIrrelevantQueryPassesThrough(t *testing.T) {
	papers := &stubPapers{items: leopardPapers}
	images := &stubImages{url: "https://example.org/leopard.jpg"}
	e := provider.NewEnricher(testutil.NewMockAnswerer(), papers, images, fallbackImage, nil)

	resp, err := e.Answer(context.Background(), model.AnswerRequest{Query: "What time is it?"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.Research != nil || resp.ImageURL != "" {
		t.Errorf("irrelevant query was enriched: %+v", resp)
	}
	if papers.calls != 0 || images.calls != 0 {
		t.Errorf("searches ran for an irrelevant query: papers=%d images=%d", papers.calls, images.calls)
	}
}

func TestEnricherFallbackImage(t *testing.T) {
	e := provider.NewEnricher(testutil.NewMockAnswerer(), nil, &stubImages{}, fallbackImage, nil)

	resp, err := e.Answer(context.Background(), model.AnswerRequest{Query: "red panda habitat"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.ImageURL != fallbackImage {
		t.Errorf("ImageURL = %q, want fallback", resp.ImageURL)
	}
	if resp.Research != nil {
		t.Errorf("Research = %v without a paper searcher, want nil", resp.Research)
	}
}

func TestEnricherSearchFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	papers := &stubPapers{err: errors.New("rate limited")}
	images := &stubImages{err: errors.New("bad key")}
	e := provider.NewEnricher(testutil.NewMockAnswerer(), papers, images, fallbackImage, zap.New(core))

	resp, err := e.Answer(context.Background(), model.AnswerRequest{Query: "deforestation in Borneo"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.Answer != "echo: deforestation in Borneo" {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Research != nil || resp.ImageURL != "" {
		t.Errorf("failed searches left data behind: %+v", resp)
	}
	if logs.Len() != 2 {
		t.Errorf("logged %d warnings, want 2", logs.Len())
	}
}

func TestEnricherAnswerFailure(t *testing.T) {
	e := provider.NewEnricher(testutil.NewFailingAnswerer(nil), &stubPapers{items: leopardPapers}, &stubImages{}, fallbackImage, nil)

	_, err := e.Answer(context.Background(), model.AnswerRequest{Query: "wildlife"})
	if !errors.Is(err, testutil.ErrMockTransport) {
		t.Errorf("error = %v, want ErrMockTransport", err)
	}
}

func TestEnricherName(t *testing.T) {
	e := provider.NewEnricher(testutil.NewMockAnswerer(), nil, nil, "", nil)
	if e.Name() != "mock" {
		t.Errorf("Name() = %q, want the wrapped answerer's name", e.Name())
	}
	if err := e.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v for answerer without Ping", err)
	}
}

func TestEnricherWithoutImageSearcherUsesFallback(t *testing.T) {
	e := provider.NewEnricher(testutil.NewMockAnswerer(), &stubPapers{items: leopardPapers}, nil, fallbackImage, nil)

	resp, err := e.Answer(context.Background(), model.AnswerRequest{Query: "tiger conservation"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.ImageURL != fallbackImage {
		t.Errorf("ImageURL = %q, want fallback", resp.ImageURL)
	}
	if diff := cmp.Diff(leopardPapers, resp.Research); diff != "" {
		t.Errorf("Research mismatch (-want +got):\n%s", diff)
	}
}

// emptyAnswerer returns neither an answer nor an error
type emptyAnswerer struct{}

func (emptyAnswerer) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	return nil, nil
}

func (emptyAnswerer) Name() string { return "empty" }

func TestEnricherNilAnswerIsError(t *testing.T) {
	e := provider.NewEnricher(emptyAnswerer{}, &stubPapers{items: leopardPapers}, &stubImages{}, fallbackImage, nil)

	resp, err := e.Answer(context.Background(), model.AnswerRequest{Query: "wildlife"})
	if err == nil || err.Error() != "empty returned no answer" {
		t.Errorf("Answer() error = %v, want a no-answer error", err)
	}
	if resp != nil {
		t.Errorf("Answer() = %+v, want nil", resp)
	}
}
