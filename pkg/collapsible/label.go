package collapsible

import "strings"

// DefaultMaxLabelWords is the word count above which labels wrap.
const DefaultMaxLabelWords = 5

// SplitLabel breaks a label of more than maxWords whitespace-separated
// words into two lines: the first maxWords words and the rest. Shorter
// labels come back as a single line unchanged.
func SplitLabel(label string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxLabelWords
	}
	words := strings.Fields(label)
	if len(words) <= maxWords {
		return []string{label}
	}
	return []string{
		strings.Join(words[:maxWords], " "),
		strings.Join(words[maxWords:], " "),
	}
}
