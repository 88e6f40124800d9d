package storage

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"wildwise/model"
)

const previewWidth = 100

// MessageMatch represents a search result within the conversation
type MessageMatch struct {
	MessageIndex int
	Sender       model.Sender
	Content      string
	Preview      string
	Timestamp    time.Time
	Score        int
}

// messageSource adapts a history to fuzzy.Source
type messageSource []model.Message

func (m messageSource) String(i int) string { return m[i].Text }
func (m messageSource) Len() int            { return len(m) }

// SearchMessages fuzzy-matches query against message texts, best match first.
// Failed replies are not searchable.
func SearchMessages(history []model.Message, query string) []MessageMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return []MessageMatch{}
	}

	searchable := make(messageSource, 0, len(history))
	indexes := make([]int, 0, len(history))
	for i, msg := range history {
		if msg.Failed {
			continue
		}
		searchable = append(searchable, msg)
		indexes = append(indexes, i)
	}

	results := fuzzy.FindFrom(query, searchable)
	matches := make([]MessageMatch, 0, len(results))
	for _, r := range results {
		msg := searchable[r.Index]
		matches = append(matches, MessageMatch{
			MessageIndex: indexes[r.Index],
			Sender:       msg.Sender,
			Content:      msg.Text,
			Preview:      Preview(msg.Text),
			Timestamp:    msg.Timestamp,
			Score:        r.Score,
		})
	}

	return matches
}

// Preview flattens text to one line and truncates it to the preview width
func Preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(flat, previewWidth, "...")
}
