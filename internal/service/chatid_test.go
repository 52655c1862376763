package service

import (
	"testing"

	"github.com/juampibolanio/trofi-chat-service/internal/apperr"
)

func TestResolveChatIDDeterministic(t *testing.T) {
	a, err := ResolveChatID("u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ResolveChatID("u2", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("chat id differs by call order: %q vs %q", a, b)
	}
	if a != "u1_u2" {
		t.Errorf("expected chat id u1_u2, got %q", a)
	}
}

func TestResolveChatIDSelfChat(t *testing.T) {
	if _, err := ResolveChatID("u1", "u1"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error for self chat, got %v", err)
	}
}

func TestResolveChatIDMissingIDs(t *testing.T) {
	for _, pair := range [][2]string{{"", "u2"}, {"u1", ""}, {"", ""}} {
		if _, err := ResolveChatID(pair[0], pair[1]); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("ResolveChatID(%q, %q): expected validation error, got %v", pair[0], pair[1], err)
		}
	}
}
