package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"agentforce/pkg/failure"
	"agentforce/pkg/message"
	"agentforce/pkg/provider"
	providertypes "agentforce/pkg/provider/types"
)

// Exchanger dispatches sequence-numbered turns on an open session.
type Exchanger struct {
	client provider.Client
}

func NewExchanger(client provider.Client) *Exchanger {
	return &Exchanger{client: client}
}

// Send posts one turn and returns the advanced state with the raw reply.
//
// The sequence number is reserved before dispatch: the returned state has
// advanced even when the call fails, so a number is never sent twice.
// Concurrent Sends on one state are not supported.
func (e *Exchanger) Send(ctx context.Context, state State, msg message.UserMessage) (State, json.RawMessage, error) {
	session, ok := state.Session()
	if !ok {
		return state, nil, failure.Message("no open session, call start first", 0, nil)
	}
	token, _ := state.Token()

	sequence := session.NextSequence
	next := state.advance()

	log := exchangeLogger().With("session_id", session.ID, "sequence_id", sequence)
	startedAt := time.Now()
	log.Debug("Turn started", "message_length", len(msg.MessageText))

	raw, err := e.client.SendMessage(ctx, token.AccessToken, session.ID, BuildTurn(msg, sequence))
	if err != nil {
		log.Warn("Turn failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return next, nil, failure.Message(describe(err), statusOf(err), err)
	}
	log.Debug("Turn completed", "duration_ms", time.Since(startedAt).Milliseconds(), "response_length", len(raw))

	return next, raw, nil
}

// BuildTurn maps a user message onto the wire envelope. Media become
// attachments, buttons become suggested actions and form fields travel in
// channel data.
func BuildTurn(msg message.UserMessage, sequence int64) providertypes.TurnRequest {
	req := providertypes.TurnRequest{
		Message:    msg.MessageText,
		SequenceID: sequence,
	}

	for _, media := range msg.Media {
		if strings.TrimSpace(media.MediaURI) == "" {
			continue
		}
		req.Attachments = append(req.Attachments, providertypes.Attachment{
			ContentType: media.MimeType,
			ContentURL:  media.MediaURI,
			Name:        media.AltText,
		})
	}

	for _, button := range msg.Buttons {
		payload := button.Payload
		if payload == "" {
			payload = button.Text
		}
		req.SuggestedActions = append(req.SuggestedActions, providertypes.SuggestedAction{
			Text:    button.Text,
			Payload: payload,
		})
	}

	if len(msg.Forms) > 0 {
		forms := make(map[string]string, len(msg.Forms))
		for _, form := range msg.Forms {
			if name := strings.TrimSpace(form.Name); name != "" {
				forms[name] = form.Value
			}
		}
		if len(forms) > 0 {
			req.ChannelData = &providertypes.ChannelData{Forms: forms}
		}
	}

	return req
}

func exchangeLogger() *slog.Logger {
	return slog.Default().With("component", "session.exchanger")
}
