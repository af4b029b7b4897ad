package pipeline

import (
	"strconv"
	"strings"
)

// clipCountKeywords are the verbs that may immediately precede the requested
// clip count in a prompt, e.g. "create 5 clips".
var clipCountKeywords = map[string]bool{
	"create":   true,
	"make":     true,
	"generate": true,
}

// ParseClipCount extracts the requested clip count from a free-text prompt.
// The grammar is deliberately narrow: an integer directly following one of
// the keywords. Anything else yields the default. The result is clamped to
// [1, max].
func ParseClipCount(prompt string, def, max int) int {
	count := def
	words := strings.Fields(strings.ToLower(prompt))
	for i := 1; i < len(words); i++ {
		if !clipCountKeywords[words[i-1]] {
			continue
		}
		token := strings.Trim(words[i], ".,!?")
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		count = n
		break
	}
	if count < 1 {
		count = 1
	}
	if max > 0 && count > max {
		count = max
	}
	return count
}
