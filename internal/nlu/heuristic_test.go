package nlu

import (
	"context"
	"errors"
	"testing"
)

func TestHeuristicDetectIntent(t *testing.T) {
	ctx := context.Background()
	var h Heuristic
	cases := []struct{ in, want string }{
		{"I want to talk to a manager", IntentTransfer},
		{"can I get a quote", IntentQuote},
		{"how much does it cost", IntentPrice},
		{"I'd like to schedule a move", IntentBooking},
		{"I need to move my stuff", IntentEstimate},
	}
	for _, c := range cases {
		got, err := h.DetectIntent(ctx, c.in)
		if err != nil {
			t.Fatalf("DetectIntent(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("DetectIntent(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestHeuristicClassifyMoveType(t *testing.T) {
	ctx := context.Background()
	var h Heuristic
	cases := []struct{ in, want string }{
		{"moving out of state to Denver", MoveLongDistance},
		{"it's a long distance move", MoveLongDistance},
		{"just some junk to haul away", MoveJunkRemoval},
		{"rearrange furniture in home", MoveInHome},
		{"moving across town", MoveLocal},
	}
	for _, c := range cases {
		got, err := h.ClassifyMoveType(ctx, c.in)
		if err != nil {
			t.Fatalf("ClassifyMoveType(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ClassifyMoveType(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestHeuristicExtractName(t *testing.T) {
	got, err := Heuristic{}.ExtractName(context.Background(), "my name is john smith")
	if err != nil {
		t.Fatalf("ExtractName: %v", err)
	}
	if got != "John Smith" {
		t.Fatalf("expected John Smith, got %q", got)
	}
}

type failingClassifier struct{}

func (failingClassifier) DetectIntent(context.Context, string) (string, error) {
	return "", errors.New("api down")
}
func (failingClassifier) ExtractName(context.Context, string) (string, error) {
	return "", errors.New("api down")
}
func (failingClassifier) ClassifyMoveType(context.Context, string) (string, error) {
	return "", errors.New("api down")
}
func (failingClassifier) GenerateResponse(context.Context, string, string) (string, error) {
	return "", errors.New("api down")
}

func TestFallbackDegrades(t *testing.T) {
	ctx := context.Background()
	f := NewFallback(failingClassifier{}, Heuristic{}, nil)

	intent, err := f.DetectIntent(ctx, "how much would it cost")
	if err != nil {
		t.Fatalf("DetectIntent: %v", err)
	}
	if intent != IntentPrice {
		t.Fatalf("expected heuristic answer, got %q", intent)
	}

	name, err := f.ExtractName(ctx, "this is maria lopez")
	if err != nil {
		t.Fatalf("ExtractName: %v", err)
	}
	if name != "Maria Lopez" {
		t.Fatalf("expected Maria Lopez, got %q", name)
	}
}
