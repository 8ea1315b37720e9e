// Package urlutil holds the URL and filename helpers shared by the downloader
// and the page renderer: query stripping, Canvas instance matching, file id and
// page slug extraction, content-disposition parsing, and filesystem
// sanitization.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

const nameReplacement = "_"

var (
	fileIDPattern    = regexp.MustCompile(`/files/(\d+)`)
	pageSlugPattern  = regexp.MustCompile(`/pages/([^/?#]+)`)
	dispositionUTF8  = regexp.MustCompile(`filename\*=UTF-8''([^";]*)`)
	dispositionPlain = regexp.MustCompile(`filename="([^"]*)"`)
	invalidNameChars = regexp.MustCompile(`[<>:"|?*]`)
)

// Normalize strips the query string and fragment from a URL. Canvas file URLs
// carry per-request verification tokens in the query, so two fetches of the
// same file only compare equal after normalization.
func Normalize(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// HasHTTPScheme reports whether the URL starts with http:// or https://.
func HasHTTPScheme(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// IsInstanceURL reports whether the URL belongs to the given Canvas domain.
func IsInstanceURL(domain, raw string) bool {
	if domain == "" || raw == "" {
		return false
	}
	return strings.Contains(raw, domain)
}

// ExtractFileID pulls the numeric file id out of a Canvas file URL.
// Returns the empty string when the URL has no /files/<id> segment.
func ExtractFileID(raw string) string {
	m := fileIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractPageSlug pulls the page slug out of a Canvas page URL.
// Returns the empty string when the URL has no /pages/<slug> segment.
func ExtractPageSlug(raw string) string {
	m := pageSlugPattern.FindStringSubmatch(Normalize(raw))
	if m == nil {
		return ""
	}
	return m[1]
}

// FilenameFromDisposition extracts a filename from a Content-Disposition
// header value. The RFC 5987 UTF-8 token takes precedence over the plain
// quoted filename when both are present. The result is percent-decoded.
// Returns the empty string when no filename parameter is found.
func FilenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	if m := dispositionUTF8.FindStringSubmatch(header); m != nil {
		return unescape(m[1])
	}
	if m := dispositionPlain.FindStringSubmatch(header); m != nil {
		return unescape(m[1])
	}
	return ""
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// SanitizeName removes characters that are illegal in filenames on common
// filesystems and trims trailing dots and spaces. Slashes are preserved so
// callers can sanitize path-shaped strings segment-aware via SanitizePath.
// Sanitizing an already sanitized name is a no-op.
func SanitizeName(name string) string {
	cleaned := invalidNameChars.ReplaceAllString(name, nameReplacement)
	return strings.TrimRight(cleaned, ". ")
}

// SanitizePath sanitizes every segment of a slash-separated path while
// keeping the separators intact.
func SanitizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = SanitizeName(part)
	}
	return strings.Join(parts, "/")
}

// SanitizeSegments sanitizes a sequence of path segments in place and returns
// it for convenience.
func SanitizeSegments(segments []string) []string {
	for i, s := range segments {
		segments[i] = SanitizePath(s)
	}
	return segments
}

// ModuleFolderName turns a module name into a single path segment the way the
// course tree expects it: slashes collapse to ampersands, colons to dashes.
func ModuleFolderName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "&")
	s = strings.ReplaceAll(s, ":", "-")
	return SanitizeName(s)
}
