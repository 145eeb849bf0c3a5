// Package convo tracks per-correspondent conversation state with a
// fixed sliding window over turns.
package convo

import (
	"context"
	"strings"
)

// Role tags a turn with its speaker. Values are wire-compatible with
// the chat completion API.
type Role string

const (
	RoleInstruction Role = "system"
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
)

// Turn is one message in a conversation. Immutable once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// DefaultWindow is how many non-instruction turns a thread retains.
const DefaultWindow = 10

// Store holds conversation threads keyed by correspondent identity.
// Implementations must serialize mutations per key; callers only ever
// receive copies, never aliases into stored state.
type Store interface {
	// Append adds a turn to the correspondent's thread, creating the
	// thread (with its instruction turn) on first use, then trims to
	// the window.
	Append(ctx context.Context, correspondent string, role Role, text string) error

	// Snapshot returns the current, already-trimmed thread in order.
	// A missing thread yields a nil slice.
	Snapshot(ctx context.Context, correspondent string) ([]Turn, error)

	// Clear removes the thread entirely. No-op if absent.
	Clear(ctx context.Context, correspondent string) error
}

// RenderContext flattens the non-instruction turns into a plain-text
// transcript suitable for a session's prior-context instructions.
func RenderContext(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case RoleUser:
			b.WriteString("User: ")
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
