package rule

import (
	"strings"
	"testing"
)

func TestValidEntryName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"simple", "report.pdf", true},
		{"unicode", "年度总结.docx", true},
		{"spaces inside", "my notes", true},
		{"empty", "", false},
		{"only spaces", "   ", false},
		{"slash", "a/b", false},
		{"backslash", "a\\b", false},
		{"nul", "a\x00b", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"too long", strings.Repeat("x", 256), false},
		{"max length", strings.Repeat("x", 255), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidEntryName(tc.in); got != tc.want {
				t.Fatalf("ValidEntryName(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestEntryNameRule(t *testing.T) {
	type req struct {
		Name string `rule:"required,entryname"`
	}

	if err := ValidateStruct(req{Name: "folder one"}); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}

	if err := ValidateStruct(req{Name: "bad/name"}); err == nil {
		t.Fatal("expected error for name with separator")
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("user@example.com", "required,email"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}

	if err := ValidateVar("not-an-email", "required,email"); err == nil {
		t.Fatal("expected error for invalid email")
	}
}
