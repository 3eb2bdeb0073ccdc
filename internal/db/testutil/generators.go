// Package testutil provides shared generators for property-based testing.
// All string generators are intentionally aggressive to catch edge cases.
package testutil

import (
	"pgregory.net/rapid"
)

// ArbitraryString generates truly arbitrary strings including empty strings,
// null bytes, Unicode, control characters, SQL injection attempts, and FTS5
// special syntax.
func ArbitraryString() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.String(),
		rapid.Just(""),
		rapid.Just("\x00"),
		rapid.Just("test\x00test"),
		rapid.StringMatching(`[a-zA-Z0-9 ]{0,100}`),
		rapid.StringMatching(`[\x00-\x1F]{1,10}`),
		arbitrarySQLInjection(),
		arbitraryFTSSyntax(),
		arbitraryUnicode(),
		arbitraryWhitespace(),
	)
}

// ArbitraryNonEmptyString is like ArbitraryString but never empty.
// Use for fields that require non-empty values (like note titles).
func ArbitraryNonEmptyString() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringN(1, 100, 200),
		rapid.Just("\x00"),
		rapid.Just("test\x00test"),
		rapid.StringMatching(`[a-zA-Z0-9 ]{1,100}`),
		arbitrarySQLInjection(),
		arbitraryFTSSyntax(),
		arbitraryUnicode(),
	)
}

// ArbitrarySearchQuery generates strings suitable for FTS5 search testing.
func ArbitrarySearchQuery() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.String(),
		rapid.Just(""),
		rapid.Just("\x00"),
		rapid.Just("test\x00test"),
		arbitrarySQLInjection(),
		arbitraryFTSSyntax(),
		arbitraryUnicode(),
		arbitraryWhitespace(),
	)
}

// ArbitraryNoteTitle generates titles for property testing, capped at the
// schema's 200-character limit.
func ArbitraryNoteTitle() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringN(1, 100, 200),
		rapid.StringMatching(`[a-zA-Z0-9 ]{1,100}`),
		arbitraryUnicode(),
	)
}

// ArbitraryNoteContent generates content for property testing.
// Can be empty or contain any characters.
func ArbitraryNoteContent() *rapid.Generator[string] {
	return ArbitraryString()
}

// ValidUserID generates well-formed user IDs.
func ValidUserID() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		prefix := rapid.StringMatching("[a-z]{1,10}").Draw(t, "prefix")
		suffix := rapid.StringMatching("[0-9]{1,5}").Draw(t, "suffix")
		return prefix + "-" + suffix
	})
}

func arbitrarySQLInjection() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		`' OR 1=1 --`,
		`'; DROP TABLE notes; --`,
		`" OR "1"="1`,
		`1; SELECT * FROM users`,
		`admin'--`,
		`' UNION SELECT * FROM users --`,
		`' OR ''='`,
		`1' AND '1'='1`,
		`<script>alert('xss')</script>`,
	})
}

func arbitraryFTSSyntax() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		`"`,
		`""`,
		`test"`,
		`"test`,
		`"test"`,
		`AND`,
		`OR`,
		`NOT`,
		`NEAR/5`,
		`*`,
		`test*`,
		`^test`,
		`col:value`,
		`(test`,
		`-test`,
		`test AND OR`,
		`"unterminated phrase`,
	})
}

func arbitraryUnicode() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		"日本語",
		"中文测试",
		"العربية",
		"🔥🎉💻🚀",
		"emoji🔥in🎉middle",
		"Ñoño",
		"Zürich",
		"Москва",
		"한국어",
		"\u200B", // zero-width space
		"\uFEFF", // BOM
		"à",
		"test space",
		"line separator",
		"math∑∏∫",
	})
}

func arbitraryWhitespace() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		" ",
		"   ",
		"\t",
		"\n",
		"\r\n",
		" \t \n ",
		"  test  ",
		"line1\nline2",
		" ",
		"　",
		"\v",
		"\f",
	})
}
