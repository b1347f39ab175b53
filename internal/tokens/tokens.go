// Package tokens maps character spans of a rendered prompt onto token index
// ranges using the tokenizer's offset mapping.
package tokens

import (
	"errors"
	"fmt"
	"strings"
)

// Offset is the character span [Start, End) one token covers in the prompt.
// Padding and special tokens carry an empty span.
type Offset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ErrSpanNotFound reports that a substring could not be located in a prompt
// or could not be mapped onto the token offsets.
var ErrSpanNotFound = errors.New("token span not found")

// #region find-token-range

// FindTokenRange locates substring within prompt and returns the half-open
// token index range [start, end) covering it. When the substring occurs more
// than once the last occurrence is used; the query line is rendered after any
// in-context demonstrations, so the last occurrence is the query subject.
func FindTokenRange(prompt, substring string, offsets []Offset) (start, end int, err error) {
	charStart := strings.LastIndex(prompt, substring)
	if charStart < 0 {
		return 0, 0, fmt.Errorf("%w: %q not in prompt %q", ErrSpanNotFound, substring, prompt)
	}
	charEnd := charStart + len(substring)

	start, end = -1, -1
	for i, off := range offsets {
		if off.Start == off.End {
			// padding / special token
			continue
		}
		if start < 0 && off.End > charStart {
			start = i
		}
		if off.Start < charEnd {
			end = i + 1
		}
	}
	if start < 0 || end <= start {
		return 0, 0, fmt.Errorf("%w: offsets do not cover %q in prompt %q",
			ErrSpanNotFound, substring, prompt)
	}
	return start, end, nil
}

// #endregion find-token-range
