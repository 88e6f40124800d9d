package testutil

import (
	"time"

	"wildwise/model"
)

// SnowLeopardResponse is the canonical answer used by scenario tests
func SnowLeopardResponse() model.AnswerResponse {
	return model.AnswerResponse{
		Answer: "Snow leopards live in the mountains of Central Asia.",
		Research: []model.ResearchItem{
			{
				Title:    "Snow Leopard Range",
				URL:      "https://example.org/a",
				Abstract: "...",
			},
		},
	}
}

// TestHistory returns a sample two-turn conversation for testing
func TestHistory() []model.Message {
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return []model.Message{
		{
			Text:      "Where do snow leopards live?",
			Sender:    model.SenderUser,
			Timestamp: ts,
		},
		{
			Text:   "Snow leopards live in the mountains of Central Asia.",
			Sender: model.SenderBot,
			Research: []model.ResearchItem{
				{Title: "Snow Leopard Range", URL: "https://example.org/a", Abstract: "..."},
				{Title: "Snow Leopard Range", URL: "https://example.org/a"},
			},
			ImageURL:  "https://example.org/leopard.jpg",
			Timestamp: ts.Add(2 * time.Second),
		},
		{
			Text:      "And red pandas?",
			Sender:    model.SenderUser,
			Timestamp: ts.Add(time.Minute),
		},
		{
			Text:      model.ErrorReply,
			Sender:    model.SenderBot,
			Failed:    true,
			Timestamp: ts.Add(time.Minute + time.Second),
		},
		{
			Text:      "Any papers on pangolins?",
			Sender:    model.SenderUser,
			Timestamp: ts.Add(2 * time.Minute),
		},
		{
			Text:      "Pangolins are the most trafficked mammals.",
			Sender:    model.SenderBot,
			Research:  []model.ResearchItem{},
			Timestamp: ts.Add(2*time.Minute + time.Second),
		},
	}
}
