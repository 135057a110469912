// Package render draws conversation transcripts for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agentforce/pkg/message"
)

type Renderer struct {
	theme theme
	// ShowNLP appends intent and entity lines under each bot message.
	ShowNLP bool
}

func New() *Renderer {
	return &Renderer{theme: defaultTheme()}
}

func (r *Renderer) User(text string) string {
	return r.theme.userTitle.Render("You") + " " + text
}

// Bot renders one bot message with its cards, buttons, media and NLP block.
func (r *Renderer) Bot(msg message.BotMessage) string {
	parts := []string{r.theme.botTitle.Render("Agent")}

	if text := strings.TrimSpace(msg.MessageText); text != "" {
		parts = append(parts, text)
	}
	for _, card := range msg.Cards {
		parts = append(parts, r.card(card))
	}
	if len(msg.Buttons) > 0 {
		parts = append(parts, r.buttons(msg.Buttons))
	}
	for _, media := range msg.Media {
		parts = append(parts, r.media(media))
	}
	if r.ShowNLP && msg.NLP != nil {
		parts = append(parts, r.nlp(*msg.NLP))
	}

	return r.theme.botBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (r *Renderer) Error(err error) string {
	if err == nil {
		return ""
	}
	return r.theme.errorBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		r.theme.errorTitle.Render("Error"),
		err.Error(),
	))
}

func (r *Renderer) Hint(text string) string {
	return r.theme.hint.Render(text)
}

func (r *Renderer) card(card message.Card) string {
	lines := []string{r.theme.cardTitle.Render(card.Text)}
	if card.Subtext != "" {
		lines = append(lines, r.theme.cardSubtext.Render(card.Subtext))
	}
	if card.Content != "" {
		lines = append(lines, card.Content)
	}
	if card.Image != nil && card.Image.MediaURI != "" {
		lines = append(lines, r.theme.media.Render(card.Image.MediaURI))
	}
	if len(card.Buttons) > 0 {
		lines = append(lines, r.buttons(card.Buttons))
	}
	return r.theme.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (r *Renderer) buttons(buttons []message.Button) string {
	rendered := make([]string, 0, len(buttons)*2)
	for i, button := range buttons {
		if i > 0 {
			rendered = append(rendered, " ")
		}
		rendered = append(rendered, r.theme.button.Render(button.Text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
}

func (r *Renderer) media(media message.Media) string {
	label := media.MediaURI
	if media.AltText != "" {
		label = media.AltText + " <" + media.MediaURI + ">"
	}
	if media.MimeType != "" {
		label += " (" + media.MimeType + ")"
	}
	return r.theme.media.Render(label)
}

func (r *Renderer) nlp(nlp message.NLP) string {
	line := fmt.Sprintf("intent %s (%.2f)", nlp.Intent.Name, nlp.Intent.Confidence)
	if len(nlp.Entities) > 0 {
		entities := make([]string, 0, len(nlp.Entities))
		for _, entity := range nlp.Entities {
			entities = append(entities, entity.Name+"="+entity.Value)
		}
		line += " entities " + strings.Join(entities, ", ")
	}
	if nlp.Intent.Incomprehension {
		return r.theme.nlpMiss.Render(line + " [incomprehension]")
	}
	return r.theme.nlp.Render(line)
}
