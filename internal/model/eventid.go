package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxEventIDLen bounds event ids in bytes.
const MaxEventIDLen = 128

// CheckEventID enforces the one rule event ids share everywhere they enter
// the system: non-empty UTF-8 of at most MaxEventIDLen bytes that fits in a
// single URL path segment. Beyond that ids are opaque, so non-ASCII is fine.
func CheckEventID(id string) error {
	switch {
	case id == "":
		return errors.New("eventId is required")
	case len(id) > MaxEventIDLen:
		return fmt.Errorf("eventId exceeds %d bytes", MaxEventIDLen)
	case !utf8.ValidString(id):
		return errors.New("eventId is not valid UTF-8")
	case strings.IndexFunc(id, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0:
		return errors.New("eventId must not contain '/', whitespace or control characters")
	}
	return nil
}
