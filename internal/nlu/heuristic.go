package nlu

import (
	"context"
	"strings"

	"moving-voice-agent/internal/speech"
)

// Heuristic is the deterministic Classifier. It never returns an error and
// anchors the fallback chain.
type Heuristic struct{}

var transferPhrases = []string{
	"manager", "operator", "human", "representative", "real person",
	"speak to someone", "talk to someone", "agent",
}

// TransferPhrases exposes the transfer-intent keyword list for the
// dialogue layer's interrupt check.
func TransferPhrases() []string { return transferPhrases }

func (Heuristic) DetectIntent(ctx context.Context, text string) (string, error) {
	_ = ctx
	t := strings.ToLower(text)
	for _, phrase := range transferPhrases {
		if strings.Contains(t, phrase) {
			return IntentTransfer, nil
		}
	}
	switch {
	case strings.Contains(t, "complain"), strings.Contains(t, "complaint"):
		return IntentComplaint, nil
	case strings.Contains(t, "book"), strings.Contains(t, "schedule"):
		return IntentBooking, nil
	case strings.Contains(t, "quote"):
		return IntentQuote, nil
	case strings.Contains(t, "price"), strings.Contains(t, "cost"), strings.Contains(t, "how much"):
		return IntentPrice, nil
	case strings.Contains(t, "question"):
		return IntentQuestion, nil
	}
	return IntentEstimate, nil
}

func (Heuristic) ExtractName(ctx context.Context, text string) (string, error) {
	_ = ctx
	return speech.ExtractName(text), nil
}

func (Heuristic) ClassifyMoveType(ctx context.Context, text string) (string, error) {
	_ = ctx
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "long distance"), strings.Contains(t, "out of state"),
		strings.Contains(t, "another state"), strings.Contains(t, "cross country"),
		strings.Contains(t, "across the country"):
		return MoveLongDistance, nil
	case strings.Contains(t, "junk"), strings.Contains(t, "haul"), strings.Contains(t, "removal"):
		return MoveJunkRemoval, nil
	case strings.Contains(t, "in-home"), strings.Contains(t, "in home"),
		strings.Contains(t, "within my home"), strings.Contains(t, "rearrange"):
		return MoveInHome, nil
	}
	return MoveLocal, nil
}

func (Heuristic) GenerateResponse(ctx context.Context, text, promptContext string) (string, error) {
	_ = ctx
	_ = text
	if promptContext == "clarification" {
		return "I'm sorry, I didn't quite catch that. Could you say it again?", nil
	}
	return "I understand. Let me help you with your moving needs.", nil
}
