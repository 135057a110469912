package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"agentforce/pkg/config"
	"agentforce/pkg/message"
)

// Script is a scripted conversation. Each turn sends one utterance and checks
// the replies it produced.
type Script struct {
	Name  string       `yaml:"name"`
	Turns []ScriptTurn `yaml:"turns"`
}

type ScriptTurn struct {
	User string `yaml:"user"`
	// Expect lists substrings that must appear somewhere in the turn's replies.
	Expect []string `yaml:"expect,omitempty"`
	// Intent, when set, must match the intent of at least one reply.
	Intent string `yaml:"intent,omitempty"`
}

var errScriptFailed = errors.New("script failed")

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Play a scripted conversation and check the replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := loadScript(args[0])
		if err != nil {
			return err
		}

		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return executeScript(ctx, cfg, log.With("component", "cmd.run"), script, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func loadScript(path string) (Script, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return parseScript(content)
}

func parseScript(content []byte) (Script, error) {
	var script Script
	if err := yaml.Unmarshal(content, &script); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	if len(script.Turns) == 0 {
		return Script{}, errors.New("parse script: no turns")
	}
	for i, turn := range script.Turns {
		if strings.TrimSpace(turn.User) == "" {
			return Script{}, fmt.Errorf("parse script: turn %d has no user text", i+1)
		}
	}
	return script, nil
}

// replyLog collects bot messages delivered by the connector callback.
type replyLog struct {
	mu      sync.Mutex
	replies []message.BotMessage
}

func (r *replyLog) add(msg message.BotMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, msg)
}

func (r *replyLog) drain() []message.BotMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	replies := r.replies
	r.replies = nil
	return replies
}

func executeScript(ctx context.Context, cfg *config.Config, log *slog.Logger, script Script, out io.Writer) error {
	replies := &replyLog{}
	rt, err := startRuntime(ctx, cfg, log, false, replies.add)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	if script.Name != "" {
		fmt.Fprintf(out, "# %s\n", script.Name)
	}

	failed := 0
	for i, turn := range script.Turns {
		if err := rt.send(ctx, turn.User); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL turn %d %q: %v\n", i+1, turn.User, err)
			continue
		}

		problems := checkTurn(turn, replies.drain())
		if len(problems) > 0 {
			failed++
			fmt.Fprintf(out, "FAIL turn %d %q: %s\n", i+1, turn.User, strings.Join(problems, "; "))
			continue
		}
		fmt.Fprintf(out, "PASS turn %d %q\n", i+1, turn.User)
	}

	log.Info("Script finished", "turns", len(script.Turns), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d turns", errScriptFailed, failed, len(script.Turns))
	}
	return nil
}

// checkTurn returns one problem per unmet expectation.
func checkTurn(turn ScriptTurn, replies []message.BotMessage) []string {
	if len(replies) == 0 {
		return []string{"no replies"}
	}

	var problems []string
	text := transcriptText(replies)
	for _, want := range turn.Expect {
		if !strings.Contains(text, want) {
			problems = append(problems, fmt.Sprintf("missing %q", want))
		}
	}

	if turn.Intent != "" && !hasIntent(replies, turn.Intent) {
		problems = append(problems, fmt.Sprintf("intent %q not recognized", turn.Intent))
	}

	return problems
}

// transcriptText flattens the visible text of replies into one searchable string.
func transcriptText(replies []message.BotMessage) string {
	var parts []string
	for _, reply := range replies {
		parts = append(parts, reply.MessageText)
		for _, card := range reply.Cards {
			parts = append(parts, card.Text, card.Subtext, card.Content)
			for _, button := range card.Buttons {
				parts = append(parts, button.Text)
			}
		}
		for _, button := range reply.Buttons {
			parts = append(parts, button.Text)
		}
		for _, media := range reply.Media {
			parts = append(parts, media.AltText, media.MediaURI)
		}
	}
	return strings.Join(parts, "\n")
}

func hasIntent(replies []message.BotMessage, intent string) bool {
	for _, reply := range replies {
		if reply.NLP != nil && strings.EqualFold(reply.NLP.Intent.Name, intent) {
			return true
		}
	}
	return false
}
