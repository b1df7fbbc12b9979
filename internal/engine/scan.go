package engine

import "strings"

// Deep-link payload prefixes that mark a certificate code
var codePrefixes = []string{"gc_", "gc-"}

// ExtractCode pulls a certificate code out of a scan payload. A known
// prefix is stripped first; everything but decimal digits is dropped.
// An empty result means the payload carried no code.
func ExtractCode(payload string) string {
	payload = strings.TrimSpace(payload)
	for _, prefix := range codePrefixes {
		if strings.HasPrefix(payload, prefix) {
			payload = payload[len(prefix):]
			break
		}
	}

	var b strings.Builder
	for _, ch := range payload {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
