// Package session stores per-call dialogue state keyed by call identifier.
//
// The contract is single-writer: the transport serializes webhooks per
// call, so at most one turn touches a given session at a time. Stores only
// need to be safe across different call identifiers.
package session

import "context"

// Store is the session persistence abstraction. T is the session payload
// type; the state machine depends only on this interface, never a concrete
// global.
type Store[T any] interface {
	// Get returns the session for the call, or found=false when none
	// exists (new call, or state lost across a restart).
	Get(ctx context.Context, callID string) (value T, found bool, err error)

	Put(ctx context.Context, callID string, value T) error

	Delete(ctx context.Context, callID string) error
}
