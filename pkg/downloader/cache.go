// Package downloader fetches individual Canvas files to disk, skipping
// content that is already present either on disk or earlier in the same run.
package downloader

import "canvasgrab/pkg/urlutil"

// Cache remembers which URLs were handled during one course so the same file
// reached through different routes (a module item, a folder listing, a page
// link) is only fetched once. URLs are normalized before lookup, so signed
// variants of the same download link hit the same entry. A fresh cache is
// created per course.
type Cache struct {
	entries map[string]string
}

// NewCache creates an empty per-course download cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// MarkDownloaded records that url was handled and saved under localName
func (c *Cache) MarkDownloaded(url, localName string) {
	c.entries[urlutil.Normalize(url)] = localName
}

// IsDownloaded reports whether url was already handled this run
func (c *Cache) IsDownloaded(url string) bool {
	_, ok := c.entries[urlutil.Normalize(url)]
	return ok
}

// LocalName returns the file name url was saved under, or "" if it was not
// handled yet
func (c *Cache) LocalName(url string) string {
	return c.entries[urlutil.Normalize(url)]
}

// Len returns the number of handled URLs
func (c *Cache) Len() int {
	return len(c.entries)
}
