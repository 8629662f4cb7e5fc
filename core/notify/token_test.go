package notify

import "testing"

func TestNormalizeTokenWrapsBareToken(t *testing.T) {
	tok, ok := NormalizeToken("abc123")
	if !ok {
		t.Fatal("expected token to resolve")
	}
	if tok != "ExponentPushToken[abc123]" {
		t.Fatalf("unexpected token %q", tok)
	}
}

func TestNormalizeTokenKeepsWrappedToken(t *testing.T) {
	tok, ok := NormalizeToken("ExponentPushToken[xyz]")
	if !ok || tok != "ExponentPushToken[xyz]" {
		t.Fatalf("unexpected result %q %v", tok, ok)
	}
}

func TestNormalizeTokenAcceptsExpoPrefix(t *testing.T) {
	tok, ok := NormalizeToken("ExpoPushToken[xyz]")
	if !ok || tok != "ExpoPushToken[xyz]" {
		t.Fatalf("unexpected result %q %v", tok, ok)
	}
}

func TestNormalizeTokenTrimsWhitespace(t *testing.T) {
	tok, ok := NormalizeToken("  abc  ")
	if !ok || tok != "ExponentPushToken[abc]" {
		t.Fatalf("unexpected result %q %v", tok, ok)
	}
}

func TestNormalizeTokenRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		if _, ok := NormalizeToken(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestNormalizeTokenRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"ExponentPushToken[]", "ExponentPushToken[a[b]", "ExponentPushToken[abc"} {
		if tok, ok := NormalizeToken(raw); ok {
			t.Fatalf("expected %q to be rejected, got %q", raw, tok)
		}
	}
}

func TestDedupTokensPreservesOrder(t *testing.T) {
	got := DedupTokens([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
}
