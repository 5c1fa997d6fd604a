// Package ids generates task IDs and resolves the shortened forms users
// type at the CLI back to full IDs.
package ids

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for Resolve.
var (
	ErrEmpty     = errors.New("empty task ID")
	ErrUnknown   = errors.New("unknown task ID")
	ErrAmbiguous = errors.New("ambiguous task ID")
)

// PrefixLength is the shortened-ID length accepted by Resolve: the first
// segment of the UUID component.
const PrefixLength = 8

// New generates a task ID of the form <uuid>_<YYYYMMDDHHMMSS>_<username>.
// The random UUID prevents collisions; the timestamp and username keep IDs
// human-attributable in exports and logs.
func New(username string) string {
	return fmt.Sprintf("%s_%s_%s", uuid.NewString(), time.Now().Format("20060102150405"), username)
}

// Resolve maps user input to a full task ID from the known set. Exact
// matches win; otherwise input of exactly PrefixLength characters is tried
// as an ID prefix. Multiple prefix matches are ambiguous, zero are
// unknown.
func Resolve(input string, known []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmpty
	}

	for _, id := range known {
		if id == input {
			return id, nil
		}
	}

	if len(input) != PrefixLength {
		return "", fmt.Errorf("%w: %s", ErrUnknown, input)
	}

	var candidates []string

	for _, id := range known {
		if strings.HasPrefix(id, input) {
			candidates = append(candidates, id)
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", fmt.Errorf("%w: %s", ErrUnknown, input)
	default:
		return "", fmt.Errorf("%w: %s matches %d tasks, use the full ID", ErrAmbiguous, input, len(candidates))
	}
}

// ResolveAll resolves a separator-joined list of shortened IDs.
func ResolveAll(input, sep string, known []string) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	var out []string

	for _, part := range strings.Split(input, sep) {
		id, err := Resolve(part, known)
		if err != nil {
			return nil, err
		}

		out = append(out, id)
	}

	return out, nil
}
