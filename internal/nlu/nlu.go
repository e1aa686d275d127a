// Package nlu classifies caller utterances: intent, move type, and name
// extraction. The production chain is an OpenAI-backed classifier degrading
// to a deterministic heuristic so the dialogue never stalls on the API.
package nlu

import "context"

// Intent labels returned by DetectIntent.
const (
	IntentEstimate  = "estimate"
	IntentBooking   = "booking"
	IntentQuote     = "quote"
	IntentPrice     = "price"
	IntentQuestion  = "question"
	IntentComplaint = "complaint"
	IntentTransfer  = "transfer"
	IntentOther     = "other"
)

// Move type labels returned by ClassifyMoveType.
const (
	MoveLocal        = "local"
	MoveLongDistance = "long distance"
	MoveJunkRemoval  = "junk removal"
	MoveInHome       = "in-home service"
)

// Classifier is the NLU collaborator contract. Implementations may fail;
// callers wrap them with Fallback so a deterministic answer always exists.
type Classifier interface {
	DetectIntent(ctx context.Context, text string) (string, error)
	ExtractName(ctx context.Context, text string) (string, error)
	ClassifyMoveType(ctx context.Context, text string) (string, error)

	// GenerateResponse produces a short conversational reply for inputs
	// outside the scripted flow. promptContext selects the system prompt
	// ("greeting", "general", "clarification").
	GenerateResponse(ctx context.Context, text, promptContext string) (string, error)
}
