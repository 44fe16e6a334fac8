package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// generateSessionName returns a short, unique-enough default session name
// for "weave server" invocations that don't pass --name, grounded on the
// pattern of dcosson-h2/internal/cmd/run.go calling out to a
// session.GenerateName() helper for the same purpose (that helper's
// implementation wasn't present in the retrieval pack).
func generateSessionName() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "session"
	}
	return "session-" + hex.EncodeToString(b[:])
}

// sessionConnError builds a helpful error when a named session can't be
// reached, listing the sessions that are actually running.
func sessionConnError(name string, err error) error {
	entries, listErr := listSessionNames()
	if listErr != nil || len(entries) == 0 {
		return fmt.Errorf("cannot connect to session %q: %w\n\nstart one with: weave server --name %s", name, err, name)
	}
	return fmt.Errorf("cannot connect to session %q: %w\n\nrunning sessions: %v", name, err, entries)
}
