package i18n

import (
	"strings"
	"testing"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	data := map[string]string{"path": ".sender.email", "expected": "string", "actual": "integer"}

	// default is en
	msg := T("invalid_type", data)
	if msg != "expected string at .sender.email, got integer" {
		t.Fatalf("unexpected english message: %q", msg)
	}

	SetLanguage("ja")
	defer SetLanguage("en")
	msg = T("invalid_type", data)
	if !strings.Contains(msg, ".sender.email") || strings.HasPrefix(msg, "expected") {
		t.Fatalf("expected japanese message, got %q", msg)
	}
}

func TestTranslator_UnknownCodeEchoesCode(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code echo, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return strings.ToUpper(code) }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upper{})
	if msg := T("required", nil); msg != "REQUIRED" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("required", map[string]string{"path": ".email"}); msg != "required field .email is missing" {
		t.Fatalf("nil should restore english, got %q", msg)
	}
}
