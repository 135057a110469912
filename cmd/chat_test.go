package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"agentforce/pkg/ui/render"
)

func TestIsExitCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "exit", want: true},
		{input: " quit ", want: true},
		{input: ":q", want: true},
		{input: "EXIT", want: true},
		{input: "hello", want: false},
		{input: "quit now", want: false},
	}

	for _, tt := range tests {
		if got := isExitCommand(tt.input); got != tt.want {
			t.Fatalf("isExitCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestResolvePrompt(t *testing.T) {
	original := promptText
	t.Cleanup(func() {
		promptText = original
	})

	promptText = " from-flag "
	if got := resolvePrompt([]string{"from", "args"}); got != "from-flag" {
		t.Fatalf("resolvePrompt with flag = %q, want %q", got, "from-flag")
	}

	promptText = ""
	if got := resolvePrompt([]string{"hello", "world"}); got != "hello world" {
		t.Fatalf("resolvePrompt with args = %q, want %q", got, "hello world")
	}

	if got := resolvePrompt(nil); got != "" {
		t.Fatalf("resolvePrompt without input = %q, want empty", got)
	}
}

func TestRunInteractiveAgainstSimulation(t *testing.T) {
	cfg := simulationConfig(t)
	renderer := render.New()

	var out bytes.Buffer
	replies := &replyLog{}
	rt, err := startRuntime(context.Background(), cfg, discardLogger(), false, replies.add)
	if err != nil {
		t.Fatalf("startRuntime() error = %v", err)
	}
	defer rt.shutdown()

	runInteractive(context.Background(), rt, renderer, strings.NewReader("hello\n\nthanks\nexit\nignored\n"), &out)

	got := replies.drain()
	if len(got) != 2 {
		t.Fatalf("replies = %d, want 2 (output %q)", len(got), out.String())
	}
	if got[0].NLP == nil || got[0].NLP.Intent.Name != "greeting" {
		t.Fatalf("first reply nlp = %+v, want greeting", got[0].NLP)
	}
	if got[1].NLP == nil || got[1].NLP.Intent.Name != "gratitude" {
		t.Fatalf("second reply nlp = %+v, want gratitude", got[1].NLP)
	}
	if !strings.Contains(out.String(), "Interactive mode") {
		t.Fatalf("missing interactive hint in %q", out.String())
	}
}
