// Package page mirrors Canvas wiki pages to disk as standalone HTML files,
// following same-instance links to files and further pages and embedding
// iframe content as local copies.
package page

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"canvasgrab/pkg/canvas"
	"canvasgrab/pkg/downloader"
	"canvasgrab/pkg/errs"
	"canvasgrab/pkg/logger"
	"canvasgrab/pkg/storage"
	"canvasgrab/pkg/ui"
	"canvasgrab/pkg/urlutil"
)

// API is the Canvas surface the renderer needs
type API interface {
	Domain() string
	PageBySlug(courseID int, slug string) (*canvas.Page, error)
	FileByID(courseID int, fileID string) (*canvas.File, error)
	Fetch(url string) (*http.Response, error)
}

// Renderer saves wiki pages below a course's pages folder. Linked pages on the
// same instance are rendered too; linked files are fetched through the
// downloader and share its per-course cache.
type Renderer struct {
	api         API
	dl          *downloader.Downloader
	store       *storage.Manager
	pagesFolder string
	chunkSize   int
	visited     map[string]bool
	logger      logger.Logger
}

// NewRenderer creates a page renderer writing into pagesFolder below each
// course directory
func NewRenderer(api API, dl *downloader.Downloader, store *storage.Manager, pagesFolder string, chunkSize int, log logger.Logger) *Renderer {
	if log == nil {
		log = logger.GetLogger()
	}
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &Renderer{
		api:         api,
		dl:          dl,
		store:       store,
		pagesFolder: pagesFolder,
		chunkSize:   chunkSize,
		visited:     make(map[string]bool),
		logger:      log,
	}
}

// Render mirrors the page behind pageURL and every page it transitively links
// to on the same instance. Pages link to each other freely, including in
// cycles, so the traversal runs off an explicit worklist with a visited set
// instead of recursing. The visited set lives on the renderer, so a page
// reached from several entry points is rendered once per course.
func (r *Renderer) Render(courseID int, pageURL string, courseSegments []string, depth int) error {
	if !urlutil.HasHTTPScheme(pageURL) {
		return errs.New(errs.ErrorTypeInvalidInput, "not a page URL: %s", pageURL)
	}
	slug := urlutil.ExtractPageSlug(pageURL)
	if slug == "" {
		return errs.New(errs.ErrorTypeInvalidInput, "no page slug in %s", pageURL)
	}

	worklist := []string{slug}
	root := true

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]
		if r.visited[current] {
			continue
		}
		r.visited[current] = true

		pg, err := r.api.PageBySlug(courseID, current)
		if err != nil {
			if root || errs.IsFatal(err) {
				return err
			}
			ui.PrintError(depth, fmt.Sprintf("page %s: %v", current, err))
			continue
		}
		root = false

		if pg.Body == "" {
			ui.PrintError(depth, fmt.Sprintf("page %s has no content, skipping", current))
			r.logger.WarnWithFields("page has no content", map[string]interface{}{"slug": current})
			continue
		}

		body, err := r.mirrorIframes(pg.Body, courseSegments, depth)
		if err != nil {
			return err
		}
		if err := r.savePage(pg, body, courseSegments, depth); err != nil {
			return err
		}

		for _, target := range linkTargets(body) {
			if !urlutil.IsInstanceURL(r.api.Domain(), target) {
				continue
			}
			if fileID := urlutil.ExtractFileID(target); fileID != "" {
				if err := r.downloadLinkedFile(courseID, fileID, courseSegments, depth); err != nil {
					return err
				}
				continue
			}
			if linked := urlutil.ExtractPageSlug(target); linked != "" && !r.visited[linked] {
				worklist = append(worklist, linked)
			}
		}
	}
	return nil
}

// downloadLinkedFile resolves a /files/<id> link to its metadata and fetches
// it into the pages folder. Failures on a single link are reported and
// skipped unless they doom the run or the course.
func (r *Renderer) downloadLinkedFile(courseID int, fileID string, courseSegments []string, depth int) error {
	file, err := r.api.FileByID(courseID, fileID)
	if err != nil {
		if errs.IsFatal(err) {
			return err
		}
		ui.PrintError(depth+1, fmt.Sprintf("file %s: %v", fileID, err))
		return nil
	}

	segments := append(append([]string{}, courseSegments...), r.pagesFolder)
	if _, err := r.dl.Download(file.URL, segments, file.DisplayName, depth+1); err != nil {
		if errs.IsFatal(err) || errs.AbortsCourse(err) {
			return err
		}
		ui.PrintError(depth+1, fmt.Sprintf("%s: %v", file.DisplayName, err))
	}
	return nil
}

// mirrorIframes fetches every absolute iframe source into the pages folder as
// iframe_<n>.html and rewrites the body to reference the local copy. Sources
// seen earlier in the course reuse their existing local name.
func (r *Renderer) mirrorIframes(body string, courseSegments []string, depth int) (string, error) {
	srcs := iframeSources(body)
	if len(srcs) == 0 {
		return body, nil
	}

	cache := r.dl.Cache()
	for _, src := range srcs {
		if !urlutil.HasHTTPScheme(src) {
			continue
		}
		if cache.IsDownloaded(src) {
			body = strings.ReplaceAll(body, src, cache.LocalName(src))
			continue
		}

		segments := append(append([]string{}, courseSegments...), r.pagesFolder)
		dir, err := r.store.EnsureDir(segments...)
		if err != nil {
			return "", err
		}

		resp, err := r.api.Fetch(src)
		if err != nil {
			if errs.IsFatal(err) {
				return "", err
			}
			ui.PrintError(depth+1, fmt.Sprintf("iframe %s: %v", src, err))
			continue
		}

		name := fmt.Sprintf("iframe_%d.html", cache.Len()+1)
		saveErr := r.store.SaveStream(filepath.Join(dir, name), resp.Body, r.chunkSize, nil)
		resp.Body.Close()
		if saveErr != nil {
			return "", saveErr
		}

		cache.MarkDownloaded(src, name)
		ui.PrintNew(depth+1, name)
		body = strings.ReplaceAll(body, src, name)
	}
	return body, nil
}

// savePage writes the page body as <title>.html wrapped in a minimal document
func (r *Renderer) savePage(pg *canvas.Page, body string, courseSegments []string, depth int) error {
	segments := append(append([]string{}, courseSegments...), r.pagesFolder)
	dir, err := r.store.EnsureDir(segments...)
	if err != nil {
		return err
	}

	title := strings.ReplaceAll(strings.TrimSpace(pg.Title), "/", "-")
	if title == "" {
		title = "Untitled Page"
	}
	name := urlutil.SanitizeName(title) + ".html"
	doc := fmt.Sprintf("<html><head><title>%s</title></head><body>%s</body></html>", title, body)
	if err := r.store.SaveText(filepath.Join(dir, name), doc); err != nil {
		return err
	}

	ui.PrintNew(depth, name)
	r.logger.DebugWithFields("rendered page", map[string]interface{}{
		"slug": pg.URL,
		"file": name,
	})
	return nil
}

// iframeSources returns the src attribute of every iframe in an HTML fragment
func iframeSources(fragment string) []string {
	var srcs []string
	scanTags(fragment, func(tag, key, val string) {
		if tag == "iframe" && key == "src" {
			srcs = append(srcs, val)
		}
	})
	return srcs
}

// linkTargets returns every href and src attribute value in an HTML fragment
func linkTargets(fragment string) []string {
	var targets []string
	scanTags(fragment, func(tag, key, val string) {
		if key == "href" || key == "src" {
			targets = append(targets, val)
		}
	})
	return targets
}

// scanTags tokenizes an HTML fragment and calls fn for every attribute of
// every start tag. Canvas page bodies are fragments, so a tolerant tokenizer
// pass beats a full document parse here.
func scanTags(fragment string, fn func(tag, key, val string)) {
	tz := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := tz.TagName()
		if !hasAttr {
			continue
		}
		for {
			key, val, more := tz.TagAttr()
			fn(string(name), string(key), string(val))
			if !more {
				break
			}
		}
	}
}
