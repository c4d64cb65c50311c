package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe     = regexp.MustCompile("(?s)```([A-Za-z]*)[ \t]*\r?\n(.*?)```")
	jsonFenceRe = regexp.MustCompile("(?s)```json[ \t]*\r?\n(.*?)```")
)

// ExtractCodeBlock returns the body of the first fenced block tagged with
// one of langs (any tag when langs is empty). Without such a block the whole
// reply is returned, trimmed.
func ExtractCodeBlock(reply string, langs ...string) string {
	for _, m := range fenceRe.FindAllStringSubmatch(reply, -1) {
		if len(langs) == 0 || containsFold(langs, m[1]) {
			return strings.TrimSpace(m[2])
		}
	}
	return strings.TrimSpace(reply)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ExtractJSON decodes the first ```json block of reply into v. A reply that
// is bare JSON is accepted too. It reports whether decoding succeeded.
func ExtractJSON(reply string, v any) bool {
	body := strings.TrimSpace(reply)
	if m := jsonFenceRe.FindStringSubmatch(reply); m != nil {
		body = strings.TrimSpace(m[1])
	} else if !strings.HasPrefix(body, "{") && !strings.HasPrefix(body, "[") {
		return false
	}
	return json.Unmarshal([]byte(body), v) == nil
}
