package downloader

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"canvasgrab/pkg/errs"
	"canvasgrab/pkg/logger"
	"canvasgrab/pkg/storage"
	"canvasgrab/pkg/ui"
	"canvasgrab/pkg/urlutil"
)

// Fetcher is the HTTP surface a download needs: a HEAD probe for the
// suggested name and byte length, and a checked GET for the body
type Fetcher interface {
	Head(url string) (*http.Response, error)
	Fetch(url string) (*http.Response, error)
}

// placeholderName is used when neither the caller nor the server suggests a
// file name
const placeholderName = "unknown_file"

// Downloader fetches files into course directories, deduplicating against the
// per-course cache and against same-sized files already on disk
type Downloader struct {
	client    Fetcher
	store     *storage.Manager
	cache     *Cache
	chunkSize int
	textOnly  bool
	logger    logger.Logger
}

// New creates a downloader writing through store. With textOnly set, bodies
// are written as decoded text under a .html name instead of streamed as
// binary chunks.
func New(client Fetcher, store *storage.Manager, cache *Cache, chunkSize int, textOnly bool, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &Downloader{
		client:    client,
		store:     store,
		cache:     cache,
		chunkSize: chunkSize,
		textOnly:  textOnly,
		logger:    log,
	}
}

// Cache returns the per-course cache this downloader records into
func (d *Downloader) Cache() *Cache {
	return d.cache
}

// Download fetches rawURL into the directory named by segments, under
// displayName when the caller knows one, the server-suggested disposition
// name otherwise, and a generic placeholder as the last resort. It returns
// the local name the content ended up under, which may carry a _<n> suffix
// when a different same-named file was already present.
func (d *Downloader) Download(rawURL string, segments []string, displayName string, depth int) (string, error) {
	if !urlutil.HasHTTPScheme(rawURL) {
		return "", errs.New(errs.ErrorTypeInvalidInput, "not a downloadable URL: %s", rawURL)
	}

	if d.cache.IsDownloaded(rawURL) {
		name := d.cache.LocalName(rawURL)
		ui.PrintExisting(depth, name)
		return name, nil
	}

	head, err := d.client.Head(rawURL)
	if err != nil {
		return "", err
	}

	name := urlutil.SanitizeName(displayName)
	if name == "" {
		name = urlutil.SanitizeName(urlutil.FilenameFromDisposition(head.Header.Get("Content-Disposition")))
	}
	if name == "" {
		name = placeholderName
	}

	dir, err := d.store.EnsureDir(segments...)
	if err != nil {
		return "", err
	}

	remoteSize := head.ContentLength
	path := filepath.Join(dir, name)
	if localSize, exists := d.store.FileSize(path); exists {
		if remoteSize > 0 && localSize == remoteSize {
			d.cache.MarkDownloaded(rawURL, name)
			ui.PrintExisting(depth, name)
			return name, nil
		}
		name = d.store.DisambiguatedName(dir, name)
		path = filepath.Join(dir, name)
	}

	resp, err := d.client.Fetch(rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if d.textOnly {
		// Text mode saves the decoded body under a .html name, whatever
		// the remote extension was
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".html"
		path = filepath.Join(dir, name)

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", errs.New(errs.ErrorTypeNetwork, "reading body of %s: %v", rawURL, readErr)
		}
		if err := d.store.SaveText(path, string(body)); err != nil {
			return "", err
		}
		ui.PrintNew(depth, name)
	} else {
		total := resp.ContentLength
		if total <= 0 {
			total = remoteSize
		}

		progress := ui.NewDownloadProgress(depth, name, total)
		if err := d.store.SaveStream(path, resp.Body, d.chunkSize, progress.Add); err != nil {
			return "", err
		}
		progress.Finish()
	}

	d.cache.MarkDownloaded(rawURL, name)
	d.logger.DebugWithFields("downloaded file", map[string]interface{}{
		"name": name,
		"path": path,
		"size": remoteSize,
	})
	return name, nil
}
