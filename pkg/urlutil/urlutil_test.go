package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips query", "https://x.edu/files/1/download?verifier=abc", "https://x.edu/files/1/download"},
		{"strips fragment", "https://x.edu/pages/intro#top", "https://x.edu/pages/intro"},
		{"no query untouched", "https://x.edu/files/1/download", "https://x.edu/files/1/download"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestHasHTTPScheme(t *testing.T) {
	assert.True(t, HasHTTPScheme("http://x.edu/f"))
	assert.True(t, HasHTTPScheme("https://x.edu/f"))
	assert.False(t, HasHTTPScheme("ftp://x.edu/f"))
	assert.False(t, HasHTTPScheme("x.edu/f"))
	assert.False(t, HasHTTPScheme(""))
}

func TestIsInstanceURL(t *testing.T) {
	assert.True(t, IsInstanceURL("canvas.school.edu", "https://canvas.school.edu/courses/1/files/2"))
	assert.False(t, IsInstanceURL("canvas.school.edu", "https://youtube.com/watch?v=1"))
	assert.False(t, IsInstanceURL("", "https://canvas.school.edu/courses/1"))
	assert.False(t, IsInstanceURL("canvas.school.edu", ""))
}

func TestExtractFileID(t *testing.T) {
	assert.Equal(t, "12345", ExtractFileID("https://x.edu/courses/1/files/12345/download"))
	assert.Equal(t, "7", ExtractFileID("/files/7"))
	assert.Equal(t, "", ExtractFileID("https://x.edu/courses/1/pages/intro"))
}

func TestExtractPageSlug(t *testing.T) {
	assert.Equal(t, "syllabus", ExtractPageSlug("https://x.edu/courses/1/pages/syllabus"))
	assert.Equal(t, "week-1", ExtractPageSlug("https://x.edu/courses/1/pages/week-1?module_item_id=9"))
	assert.Equal(t, "", ExtractPageSlug("https://x.edu/courses/1/files/2"))
}

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			"plain filename",
			`attachment; filename="hw1.pdf"`,
			"hw1.pdf",
		},
		{
			"utf8 token wins over plain",
			`attachment; filename="fallback.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`,
			"résumé.pdf",
		},
		{
			"utf8 token alone",
			`attachment; filename*=UTF-8''notes%20week%201.pdf`,
			"notes week 1.pdf",
		},
		{
			"percent decoded plain",
			`attachment; filename="lecture%202.pptx"`,
			"lecture 2.pptx",
		},
		{"no filename", "attachment", ""},
		{"empty header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilenameFromDisposition(tt.header))
		})
	}
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "what_ why_", SanitizeName(`what? why*`))
	assert.Equal(t, "notes", SanitizeName("notes. "))
	assert.Equal(t, "a_b_c", SanitizeName(`a<b>c`))
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{`hw: draft?.pdf`, "plain.txt", "trailing. ", `<all|bad>`}
	for _, in := range inputs {
		once := SanitizeName(in)
		assert.Equal(t, once, SanitizeName(once), "sanitize should be idempotent for %q", in)
	}
}

func TestSanitizePathPreservesSeparators(t *testing.T) {
	assert.Equal(t, "course files/HW_ 1/notes", SanitizePath("course files/HW? 1/notes. "))

	once := SanitizePath("a_/b_/c")
	assert.Equal(t, once, SanitizePath(once))
}

func TestSanitizeSegments(t *testing.T) {
	segments := []string{"CS101", "HW? 1", "sub/dir."}
	assert.Equal(t, []string{"CS101", "HW_ 1", "sub/dir"}, SanitizeSegments(segments))
}

func TestModuleFolderName(t *testing.T) {
	assert.Equal(t, "Week 1- Intro", ModuleFolderName(" Week 1: Intro "))
	assert.Equal(t, "A&B", ModuleFolderName("A/B"))
}
