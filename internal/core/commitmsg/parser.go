// Package commitmsg parses the structured trailers a commit message must
// carry to pass the gate. Parsing is purely structural and runs before any
// evidence is collected, so malformed metadata fails fast without wasting
// a collection round-trip.
package commitmsg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedMetadata is wrapped by every structural parse failure.
var ErrMalformedMetadata = errors.New("malformed commit metadata")

// Trailer keys recognized in commit messages.
const (
	StepTrailer      = "Playbook-Step"
	SpecHashTrailer  = "Spec-Hash"
	AmendmentTrailer = "Amendment"
)

var (
	stepPattern      = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	amendmentPattern = regexp.MustCompile(`^AMD-\d{3,}$`)
)

// Metadata is the declared metadata extracted from a commit message.
type Metadata struct {
	Step        string
	SpecHash    string
	AmendmentID string
}

// Parse extracts the gate trailers from a commit message. The message must
// declare exactly one step and exactly one spec hash, and at most one
// amendment reference.
func Parse(message string) (*Metadata, error) {
	var steps, hashes, amendments []string

	for _, line := range strings.Split(message, "\n") {
		key, value, ok := splitTrailer(line)
		if !ok {
			continue
		}
		switch key {
		case StepTrailer:
			steps = append(steps, value)
		case SpecHashTrailer:
			hashes = append(hashes, value)
		case AmendmentTrailer:
			amendments = append(amendments, value)
		}
	}

	if len(steps) != 1 {
		return nil, malformed(fmt.Sprintf("message must declare exactly one %s trailer, found %d", StepTrailer, len(steps)))
	}
	if len(hashes) != 1 {
		return nil, malformed(fmt.Sprintf("message must declare exactly one %s trailer, found %d", SpecHashTrailer, len(hashes)))
	}
	if len(amendments) > 1 {
		return nil, malformed(fmt.Sprintf("message declares %d %s trailers, at most one is allowed", len(amendments), AmendmentTrailer))
	}

	meta := &Metadata{Step: steps[0], SpecHash: hashes[0]}
	if !stepPattern.MatchString(meta.Step) {
		return nil, malformed(fmt.Sprintf("step %q is not a valid step id", meta.Step))
	}
	if meta.SpecHash == "" {
		return nil, malformed("spec hash trailer is empty")
	}
	if len(amendments) == 1 {
		if !amendmentPattern.MatchString(amendments[0]) {
			return nil, malformed(fmt.Sprintf("amendment reference %q is not a valid amendment id", amendments[0]))
		}
		meta.AmendmentID = amendments[0]
	}
	return meta, nil
}

func malformed(detail string) error {
	return fmt.Errorf("%w: %s", ErrMalformedMetadata, detail)
}

// splitTrailer parses a "Key: value" trailer line. Lines that do not look
// like trailers (prose, diff markers, comments) are skipped by the caller.
func splitTrailer(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}
