package service

import "strings"

// clip trims whitespace and silently truncates to max runes. Oversized
// payloads are cut, not rejected.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
