package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wildwise/model"
)

// Format is a conversation export format
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts json, yaml/yml and markdown/md
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format: %q (use json, yaml or markdown)", name)
	}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format from %q", path)
	}
	return ParseFormat(ext)
}

// Extension returns the file extension for the format, including the dot
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	default:
		return ".json"
	}
}

// Export writes history to w in the given format
func Export(w io.Writer, history []model.Message, format Format) error {
	if history == nil {
		history = []model.Message{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(history)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(history); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case FormatMarkdown:
		_, err := io.WriteString(w, RenderMarkdown(history))
		return err

	default:
		return fmt.Errorf("unknown export format: %q", format)
	}
}

// ExportToFile writes history to path, choosing the format by extension
func ExportToFile(path string, history []model.Message) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	// Ensure directory exists (0700 - user-only access)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to file (0600 - exports contain the conversation)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Export(f, history, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderMarkdown formats history as a markdown transcript
func RenderMarkdown(history []model.Message) string {
	var b strings.Builder
	b.WriteString("# WildWise conversation\n")

	for _, msg := range history {
		b.WriteString("\n")
		switch msg.Sender {
		case model.SenderUser:
			b.WriteString("## You\n\n")
		default:
			b.WriteString("## WildWise\n\n")
		}
		b.WriteString(strings.TrimSpace(msg.Text))
		b.WriteString("\n")

		if msg.ImageURL != "" {
			fmt.Fprintf(&b, "\n![image](%s)\n", msg.ImageURL)
		}

		if msg.Research == nil {
			continue
		}
		b.WriteString("\n### Research\n\n")
		if len(msg.Research) == 0 {
			b.WriteString("No research papers found.\n")
			continue
		}
		for _, item := range msg.Research {
			fmt.Fprintf(&b, "- [%s](%s)\n", item.Title, item.URL)
			if item.Abstract != "" {
				fmt.Fprintf(&b, "  %s\n", item.Abstract)
			}
		}
	}

	return b.String()
}
