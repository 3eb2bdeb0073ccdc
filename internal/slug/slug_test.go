package slug

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestMake_KnownTitles(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Hello, World!!! 2024":   "hello-world-2024",
		"???":                    "untitled",
		"":                       "untitled",
		"   ":                    "untitled",
		"Already lowercase":      "already-lowercase",
		"Tabs\tand\nnewlines":    "tabs-and-newlines",
		"MiXeD CaSe TiTle":       "mixed-case-title",
		"hyphen-ated title":      "hyphenated-title",
		"  leading and trailing  ": "leading-and-trailing",
		"Ünïcödé stripped":       "ncd-stripped",
		"123 456":                "123-456",
	}
	for input, want := range cases {
		if got := Make(input); got != want {
			t.Fatalf("Make(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestMake_CapsAtMaxLen(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("word ", 40)
	got := Make(long)
	if len(got) > MaxLen {
		t.Fatalf("Make produced %d chars, cap is %d: %q", len(got), MaxLen, got)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("Make left a trailing hyphen after capping: %q", got)
	}
}

func testMake_OutputAlwaysWellFormed(t *rapid.T) {
	title := rapid.String().Draw(t, "title")
	got := Make(title)

	if got == "" {
		t.Fatal("Make returned empty string")
	}
	if len(got) > MaxLen {
		t.Fatalf("Make exceeded cap: %d chars", len(got))
	}
	if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
		t.Fatalf("Make produced leading/trailing hyphen: %q", got)
	}
	if strings.Contains(got, "--") {
		t.Fatalf("Make produced consecutive hyphens: %q", got)
	}
	for _, r := range got {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			t.Fatalf("Make produced invalid rune %q in %q", r, got)
		}
	}
}

func TestMake_OutputAlwaysWellFormed(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testMake_OutputAlwaysWellFormed)
}

func TestWithSuffix(t *testing.T) {
	t.Parallel()
	if got := WithSuffix("base", 0); got != "base" {
		t.Fatalf("WithSuffix(base, 0) = %q", got)
	}
	if got := WithSuffix("base", 1); got != "base-1" {
		t.Fatalf("WithSuffix(base, 1) = %q", got)
	}
	if got := WithSuffix("untitled", 2); got != "untitled-2" {
		t.Fatalf("WithSuffix(untitled, 2) = %q", got)
	}
}
