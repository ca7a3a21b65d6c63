package core

import (
	"regexp"
	"strings"
)

// blockedWords is the fixed list masked out of forum content before storage.
var blockedWords = []string{"merda", "porra", "caralho", "bosta"}

var blockedPatterns = buildBlockedPatterns(blockedWords)

func buildBlockedPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		patterns = append(patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(word)))
	}
	return patterns
}

// Redact replaces every case-insensitive occurrence of a blocked word with an
// equal-length asterisk mask. The transform is deterministic and idempotent:
// masked output contains no blocked words, so filtering it again is a no-op.
func Redact(text string) string {
	result := text
	for i, pattern := range blockedPatterns {
		mask := strings.Repeat("*", len(blockedWords[i]))
		result = pattern.ReplaceAllString(result, mask)
	}
	return result
}
