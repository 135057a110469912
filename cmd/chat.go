package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"agentforce/pkg/message"
	"agentforce/pkg/ui/render"
)

var (
	promptText string
	showNLP    bool
	withStatus bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send one utterance or start an interactive conversation",
	Long:  "Authenticates against the configured org, opens an agent session, and sends one utterance or starts an interactive conversation.",
	Run: func(cmd *cobra.Command, args []string) {
		prompt := resolvePrompt(args)

		cfg, log, err := setup()
		if err != nil {
			fmt.Printf("%v\n", err)
			return
		}
		log = log.With("component", "cmd.chat")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		renderer := render.New()
		renderer.ShowNLP = showNLP
		out := cmd.OutOrStdout()

		rt, err := startRuntime(ctx, cfg, log, withStatus, func(msg message.BotMessage) {
			fmt.Fprintln(out, renderer.Bot(msg))
		})
		if err != nil {
			fmt.Fprintln(out, renderer.Error(err))
			return
		}
		defer rt.shutdown()

		if prompt != "" {
			runSinglePrompt(ctx, rt, renderer, out, prompt)
			return
		}

		runInteractive(ctx, rt, renderer, cmd.InOrStdin(), out)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&promptText, "prompt", "p", "", "utterance to send")
	chatCmd.Flags().BoolVar(&showNLP, "nlp", false, "show intent and entities under each reply")
	chatCmd.Flags().BoolVar(&withStatus, "status", false, "serve /healthz, /readyz and /metrics while chatting")
}

func resolvePrompt(args []string) string {
	if value := strings.TrimSpace(promptText); value != "" {
		return value
	}

	return strings.TrimSpace(strings.Join(args, " "))
}

func runSinglePrompt(ctx context.Context, rt *runtime, renderer *render.Renderer, out io.Writer, prompt string) {
	if err := rt.send(ctx, prompt); err != nil {
		fmt.Fprintln(out, renderer.Error(err))
	}
}

func runInteractive(ctx context.Context, rt *runtime, renderer *render.Renderer, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, renderer.Hint("Interactive mode. Type 'exit' to quit."))
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintln(out, renderer.Error(fmt.Errorf("read input: %w", err)))
			}
			fmt.Fprintln(out)
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExitCommand(input) {
			return
		}

		if err := rt.send(ctx, input); err != nil {
			fmt.Fprintln(out, renderer.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func isExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", ":q":
		return true
	default:
		return false
	}
}
