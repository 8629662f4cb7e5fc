package notify

import (
	"regexp"
	"strings"
)

// tokenPattern matches the Expo push token wire format.
var tokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[[^\[\]]+\]$`)

// NormalizeToken trims a raw device token, wraps it in the
// ExponentPushToken[...] envelope when the user stored the bare token, and
// validates the result. It reports false for absent, empty or malformed
// tokens; those recipients are excluded from dispatch.
func NormalizeToken(raw string) (string, bool) {
	tok := strings.TrimSpace(raw)
	if tok == "" {
		return "", false
	}
	if !strings.HasPrefix(tok, "ExponentPushToken[") && !strings.HasPrefix(tok, "ExpoPushToken[") {
		tok = "ExponentPushToken[" + tok + "]"
	}
	if !tokenPattern.MatchString(tok) {
		return "", false
	}
	return tok, true
}

// DedupTokens collapses normalized tokens to a unique set, preserving
// first-seen order. Deduplication is purely by token string: two alerts whose
// recipients resolve to the same physical device get one delivery.
func DedupTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
