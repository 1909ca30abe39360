// Package idgen generates run identifiers.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 UUID v7 strings (time-sortable).
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// RunPrefix scopes run identifiers.
const RunPrefix = "run_"

// NewRunID returns "run_" followed by a UUIDv7.
var NewRunID Generator = Prefixed(RunPrefix, UUIDv7())

// ValidRunID reports whether id is a run prefix followed by a parseable UUID.
func ValidRunID(id string) bool {
	rest, ok := strings.CutPrefix(id, RunPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
