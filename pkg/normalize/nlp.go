package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"agentforce/pkg/message"
)

const defaultConfidence = 1.0

// incomprehensionIntents are the intent names a platform uses for "did not understand".
var incomprehensionIntents = []string{"none", "unknown"}

// extractNLP returns intent and entity data from the first source carrying an
// intent or nlp field, or nil when none does.
func extractNLP(sources ...gjson.Result) *message.NLP {
	for _, source := range sources {
		if nlp, ok := nlpFrom(source); ok {
			return nlp
		}
	}
	return nil
}

func nlpFrom(r gjson.Result) (*message.NLP, bool) {
	if !r.IsObject() {
		return nil, false
	}

	intent := r.Get("intent")
	nlp := r.Get("nlp")
	if !intent.Exists() && !nlp.Exists() {
		return nil, false
	}

	var name string
	var confidence gjson.Result
	var entities gjson.Result

	switch {
	case intent.IsObject():
		name = firstString(intent, "name", "label")
		confidence = intent.Get("confidence")
		entities = intent.Get("entities")
	case intent.Type == gjson.String:
		name = strings.TrimSpace(intent.String())
		confidence = r.Get("confidence")
	}

	if nlp.IsObject() {
		nested := nlp.Get("intent")
		if name == "" {
			if nested.IsObject() {
				name = firstString(nested, "name", "label")
			} else {
				name = strings.TrimSpace(nested.String())
			}
		}
		if !confidence.Exists() {
			confidence = nlp.Get("confidence")
			if !confidence.Exists() && nested.IsObject() {
				confidence = nested.Get("confidence")
			}
		}
		if !entities.IsArray() {
			entities = nlp.Get("entities")
		}
	}
	if top := r.Get("entities"); top.IsArray() {
		entities = top
	}

	return &message.NLP{
		Intent: message.Intent{
			Name:            name,
			Confidence:      parseConfidence(confidence),
			Incomprehension: isIncomprehension(name),
		},
		Entities: parseEntities(entities),
	}, true
}

// parseConfidence accepts numbers and numeric strings; anything else is full confidence.
func parseConfidence(v gjson.Result) float64 {
	var value float64
	switch v.Type {
	case gjson.Number:
		value = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return defaultConfidence
		}
		value = parsed
	default:
		return defaultConfidence
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return defaultConfidence
	}
	return value
}

func isIncomprehension(name string) bool {
	for _, sentinel := range incomprehensionIntents {
		if strings.EqualFold(name, sentinel) {
			return true
		}
	}
	return false
}

func parseEntities(list gjson.Result) []message.Entity {
	entries := list.Array()
	entities := make([]message.Entity, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == gjson.String {
			entities = append(entities, message.Entity{Value: entry.String()})
			continue
		}
		if !entry.IsObject() {
			continue
		}

		entity := message.Entity{
			Name:  firstString(entry, "name", "entity", "type"),
			Value: firstString(entry, "value", "text"),
		}
		if c := entry.Get("confidence"); c.Exists() {
			entity.Confidence = parseConfidence(c)
		}
		entities = append(entities, entity)
	}
	return entities
}
