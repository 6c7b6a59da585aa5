package util

import "testing"

func TestHashText(t *testing.T) {
	prompt := "system: be strict\n\nuser: resume text"
	got := HashText(prompt)
	if got != HashText(prompt) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if got == HashText(prompt+" ") {
		t.Fatal("expected different input to change the hash")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}
