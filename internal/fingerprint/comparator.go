// internal/fingerprint/comparator.go
package fingerprint

import (
	"strings"

	"github.com/brydge/brydge-backend/internal/apperrors"
)

const (
	// Chromaprint emits base64url text; anything shorter than this
	// cannot carry enough sub-hashes to compare meaningfully.
	minTokenLength = 16

	// Width of the character shingles the similarity measure is
	// computed over.
	shingleWidth = 8

	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_="
)

// Validate checks that token looks like a well-formed fingerprint. The
// extractor should never emit a malformed token, but comparison
// defends against it anyway.
func Validate(token string) error {
	if token == "" {
		return apperrors.New(apperrors.KindInvalidFingerprint, "fingerprint is empty")
	}
	if len(token) < minTokenLength {
		return apperrors.Newf(apperrors.KindInvalidFingerprint,
			"fingerprint too short (%d chars)", len(token))
	}
	for _, r := range token {
		if !strings.ContainsRune(tokenAlphabet, r) {
			return apperrors.Newf(apperrors.KindInvalidFingerprint,
				"fingerprint contains invalid character %q", r)
		}
	}
	return nil
}

// Compare scores the acoustic similarity of two fingerprint tokens in
// [0,1]. It is deterministic and order-independent: Compare(a, b) ==
// Compare(b, a). The score is the Jaccard index of the tokens'
// character shingle sets, which is independent of which fingerprint
// algorithm produced the tokens as long as both came from the same
// extractor.
func Compare(a, b string) (float64, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}
	if err := Validate(b); err != nil {
		return 0, err
	}

	if a == b {
		return 1, nil
	}

	setA := shingles(a)
	setB := shingles(b)

	var intersection int
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0, nil
	}

	return float64(intersection) / float64(union), nil
}

// CompareIDSets scores two raw identifier sets returned by an external
// lookup using the overlap coefficient. Either set being empty means
// no similarity, not an error.
func CompareIDSets(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(b))
	var intersection int
	for _, id := range b {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := setA[id]; ok {
			intersection++
		}
	}

	smaller := len(setA)
	if len(seen) < smaller {
		smaller = len(seen)
	}

	return float64(intersection) / float64(smaller)
}

func shingles(token string) map[string]struct{} {
	set := make(map[string]struct{}, len(token))
	if len(token) <= shingleWidth {
		set[token] = struct{}{}
		return set
	}
	for i := 0; i+shingleWidth <= len(token); i++ {
		set[token[i:i+shingleWidth]] = struct{}{}
	}
	return set
}
