package nlu

import (
	"context"
	"log/slog"
)

// Fallback chains two classifiers: every call tries primary first and
// degrades to secondary on error or empty output. With Heuristic as the
// secondary, the chain as a whole never fails.
type Fallback struct {
	primary   Classifier
	secondary Classifier
	log       *slog.Logger
}

func NewFallback(primary, secondary Classifier, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, log: log}
}

func (f *Fallback) degrade(ctx context.Context, op string, call func(Classifier) (string, error)) (string, error) {
	out, err := call(f.primary)
	if err == nil && out != "" {
		return out, nil
	}
	if err != nil {
		f.log.Warn("nlu primary failed, degrading", "op", op, "error", err)
	}
	return call(f.secondary)
}

func (f *Fallback) DetectIntent(ctx context.Context, text string) (string, error) {
	return f.degrade(ctx, "detect_intent", func(c Classifier) (string, error) {
		return c.DetectIntent(ctx, text)
	})
}

func (f *Fallback) ExtractName(ctx context.Context, text string) (string, error) {
	return f.degrade(ctx, "extract_name", func(c Classifier) (string, error) {
		return c.ExtractName(ctx, text)
	})
}

func (f *Fallback) ClassifyMoveType(ctx context.Context, text string) (string, error) {
	return f.degrade(ctx, "classify_move_type", func(c Classifier) (string, error) {
		return c.ClassifyMoveType(ctx, text)
	})
}

func (f *Fallback) GenerateResponse(ctx context.Context, text, promptContext string) (string, error) {
	return f.degrade(ctx, "generate_response", func(c Classifier) (string, error) {
		return c.GenerateResponse(ctx, text, promptContext)
	})
}
