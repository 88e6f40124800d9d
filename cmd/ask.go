package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"wildwise/model"
	"wildwise/speech"
)

var (
	askVoice bool

	errNoQuestion   = errors.New("no question given (pass it as arguments or use --voice)")
	errNoTranscript = errors.New("no speech was recognized")
	errAnswerFailed = errors.New("the answering service request failed")
	errNotSubmitted = errors.New("question was not submitted")
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask one question and print the answer",
	Long: `Ask one question without starting the interactive client.

The question and its answer are appended to the saved conversation, so the
backend sees earlier turns as context. With --voice the question is dictated
through the configured speech command instead of passed as arguments.

Examples:
  wildwise ask "How many tigers are left in the wild?"
  wildwise ask --voice
  wildwise ask --backend ollama "What do pangolins eat?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" && !askVoice {
			return errNoQuestion
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openSession(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer s.close()

		out := cmd.OutOrStdout()
		if askVoice {
			fmt.Fprintln(cmd.ErrOrStderr(), "Listening...")
			if err := s.speech.Capture(ctx); err != nil {
				if errors.Is(err, speech.ErrUnavailable) {
					return errors.New("speech capture unavailable: set [speech] command in config.toml or WILDWISE_SPEECH_COMMAND")
				}
				return err
			}
			if strings.TrimSpace(s.store.Draft()) == "" {
				return errNoTranscript
			}
			fmt.Fprintf(out, "You: %s\n\n", s.store.Draft())
		} else {
			s.store.SetDraft(query)
		}

		if !s.turns.SubmitAndWait() {
			return errNotSubmitted
		}

		answer, _ := s.store.Last()
		printAnswer(out, answer)
		if answer.Failed {
			return errAnswerFailed
		}
		return nil
	},
}

// printAnswer writes a bot message as plain text
func printAnswer(w io.Writer, msg model.Message) {
	fmt.Fprintln(w, msg.Text)

	if msg.HasResearch() {
		fmt.Fprintln(w, "\nResearch:")
		if len(msg.Research) == 0 {
			fmt.Fprintln(w, "  No research papers found.")
		}
		for _, item := range msg.Research {
			fmt.Fprintf(w, "  • %s\n    %s\n", item.Title, item.URL)
			if item.Abstract != "" {
				fmt.Fprintf(w, "    %s\n", item.Abstract)
			}
		}
	}

	if msg.ImageURL != "" {
		fmt.Fprintf(w, "\nImage: %s\n", msg.ImageURL)
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askVoice, "voice", false, "Dictate the question through the speech command")
}
