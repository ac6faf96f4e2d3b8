package chat

import (
	"regexp"
	"strings"
)

// Some models interleave a delimited reasoning segment with the answer.
var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// ExtractReasoning splits a raw reply into visible content and the reasoning
// segment. With no delimiters present, content is the full raw text and
// reasoning is empty.
func ExtractReasoning(raw string) (content, reasoning string) {
	loc := thinkPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return raw, ""
	}

	reasoning = strings.TrimSpace(raw[loc[2]:loc[3]])
	content = strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])
	return content, reasoning
}
