package page

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasgrab/pkg/canvas"
	"canvasgrab/pkg/downloader"
	"canvasgrab/pkg/errs"
	"canvasgrab/pkg/logger"
	"canvasgrab/pkg/storage"
)

// fakeAPI serves pages, file metadata, and raw bodies from maps, counting
// fetches so tests can assert each resource is hit once
type fakeAPI struct {
	domain       string
	pages        map[string]*canvas.Page
	files        map[string]*canvas.File
	bodies       map[string]string
	dispositions map[string]string
	pageCalls    map[string]int
	fetchCalls   map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		domain:       "canvas.school.edu",
		pages:        make(map[string]*canvas.Page),
		files:        make(map[string]*canvas.File),
		bodies:       make(map[string]string),
		dispositions: make(map[string]string),
		pageCalls:    make(map[string]int),
		fetchCalls:   make(map[string]int),
	}
}

func (f *fakeAPI) Domain() string {
	return f.domain
}

func (f *fakeAPI) PageBySlug(courseID int, slug string) (*canvas.Page, error) {
	f.pageCalls[slug]++
	pg, ok := f.pages[slug]
	if !ok {
		return nil, errs.NewWithCode(errs.ErrorTypeNotFound, 404, "resource not found")
	}
	return pg, nil
}

func (f *fakeAPI) FileByID(courseID int, fileID string) (*canvas.File, error) {
	file, ok := f.files[fileID]
	if !ok {
		return nil, errs.NewWithCode(errs.ErrorTypeNotFound, 404, "resource not found")
	}
	return file, nil
}

func (f *fakeAPI) Head(url string) (*http.Response, error) {
	body, ok := f.bodies[url]
	if !ok {
		return nil, errs.NewWithCode(errs.ErrorTypeNotFound, 404, "resource not found")
	}
	header := http.Header{}
	if d := f.dispositions[url]; d != "" {
		header.Set("Content-Disposition", d)
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		Header:        header,
		ContentLength: int64(len(body)),
		Body:          http.NoBody,
	}, nil
}

func (f *fakeAPI) Fetch(url string) (*http.Response, error) {
	f.fetchCalls[url]++
	body, ok := f.bodies[url]
	if !ok {
		return nil, errs.NewWithCode(errs.ErrorTypeNotFound, 404, "resource not found")
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		Header:        http.Header{},
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
	}, nil
}

func newTestRenderer(t *testing.T, api *fakeAPI) (*Renderer, *storage.Manager) {
	t.Helper()

	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	dl := downloader.New(api, store, downloader.NewCache(), 4096, false, logger.NewTestLogger())
	return NewRenderer(api, dl, store, "Files", 4096, logger.NewTestLogger()), store
}

func pagePath(store *storage.Manager, course, name string) string {
	return filepath.Join(store.BaseDir(), course, "Files", name)
}

func pageWebURL(slug string) string {
	return "https://canvas.school.edu/courses/1/pages/" + slug
}

func TestRenderSavesWrappedPage(t *testing.T) {
	api := newFakeAPI()
	api.pages["syllabus"] = &canvas.Page{URL: "syllabus", Title: "Syllabus", Body: "<p>welcome</p>"}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("syllabus"), []string{"CS101"}, 1))

	content, err := os.ReadFile(pagePath(store, "CS101", "Syllabus.html"))
	require.NoError(t, err)
	assert.Equal(t,
		"<html><head><title>Syllabus</title></head><body><p>welcome</p></body></html>",
		string(content))
}

func TestRenderSanitizesTitle(t *testing.T) {
	api := newFakeAPI()
	api.pages["q-a"] = &canvas.Page{URL: "q-a", Title: `Q&A: "week 1"?`, Body: "<p>x</p>"}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("q-a"), []string{"CS101"}, 1))

	_, err := os.Stat(pagePath(store, "CS101", "Q&A_ _week 1__.html"))
	assert.NoError(t, err)
}

func TestRenderSelfLinkTerminates(t *testing.T) {
	api := newFakeAPI()
	api.pages["loop"] = &canvas.Page{
		URL:   "loop",
		Title: "Loop",
		Body:  `<a href="https://canvas.school.edu/courses/1/pages/loop">me again</a>`,
	}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("loop"), []string{"CS101"}, 1))

	assert.Equal(t, 1, api.pageCalls["loop"])
	_, err := os.Stat(pagePath(store, "CS101", "Loop.html"))
	assert.NoError(t, err)
}

func TestRenderTwoPageCycle(t *testing.T) {
	api := newFakeAPI()
	api.pages["a"] = &canvas.Page{
		URL: "a", Title: "A",
		Body: `<a href="https://canvas.school.edu/courses/1/pages/b">b</a>`,
	}
	api.pages["b"] = &canvas.Page{
		URL: "b", Title: "B",
		Body: `<a href="https://canvas.school.edu/courses/1/pages/a">a</a>`,
	}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("a"), []string{"CS101"}, 1))

	assert.Equal(t, 1, api.pageCalls["a"])
	assert.Equal(t, 1, api.pageCalls["b"])
	_, err := os.Stat(pagePath(store, "CS101", "A.html"))
	assert.NoError(t, err)
	_, err = os.Stat(pagePath(store, "CS101", "B.html"))
	assert.NoError(t, err)
}

func TestRenderSharedLinkedPageOncePerCourse(t *testing.T) {
	api := newFakeAPI()
	api.pages["one"] = &canvas.Page{
		URL: "one", Title: "One",
		Body: `<a href="https://canvas.school.edu/courses/1/pages/shared">shared</a>`,
	}
	api.pages["two"] = &canvas.Page{
		URL: "two", Title: "Two",
		Body: `<a href="https://canvas.school.edu/courses/1/pages/shared">shared</a>`,
	}
	api.pages["shared"] = &canvas.Page{URL: "shared", Title: "Shared", Body: "<p>once</p>"}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("one"), []string{"CS101"}, 1))
	require.NoError(t, r.Render(1, pageWebURL("two"), []string{"CS101"}, 1))

	assert.Equal(t, 1, api.pageCalls["shared"], "a page linked from two entry points is fetched once")
	_, err := os.Stat(pagePath(store, "CS101", "Shared.html"))
	assert.NoError(t, err)
	_, err = os.Stat(pagePath(store, "CS101", "Two.html"))
	assert.NoError(t, err)
}

func TestRenderMirrorsIframes(t *testing.T) {
	api := newFakeAPI()
	api.pages["video"] = &canvas.Page{
		URL: "video", Title: "Video",
		Body: `<iframe src="https://media.example.com/embed/42"></iframe>`,
	}
	api.bodies["https://media.example.com/embed/42"] = "<html>player</html>"

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("video"), []string{"CS101"}, 1))

	embedded, err := os.ReadFile(pagePath(store, "CS101", "iframe_1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>player</html>", string(embedded))

	saved, err := os.ReadFile(pagePath(store, "CS101", "Video.html"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), `<iframe src="iframe_1.html">`)
	assert.NotContains(t, string(saved), "media.example.com")
}

func TestRenderReusesIframeAcrossPages(t *testing.T) {
	api := newFakeAPI()
	src := "https://media.example.com/embed/42"
	api.pages["one"] = &canvas.Page{
		URL: "one", Title: "One",
		Body: fmt.Sprintf(`<iframe src="%s"></iframe><a href="https://canvas.school.edu/courses/1/pages/two">next</a>`, src),
	}
	api.pages["two"] = &canvas.Page{
		URL: "two", Title: "Two",
		Body: fmt.Sprintf(`<iframe src="%s"></iframe>`, src),
	}
	api.bodies[src] = "<html>player</html>"

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("one"), []string{"CS101"}, 1))

	assert.Equal(t, 1, api.fetchCalls[src], "shared iframe fetched once")

	saved, err := os.ReadFile(pagePath(store, "CS101", "Two.html"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), `src="iframe_1.html"`)
}

func TestRenderDownloadsLinkedFiles(t *testing.T) {
	api := newFakeAPI()
	api.pages["hw"] = &canvas.Page{
		URL: "hw", Title: "Homework",
		Body: `<a href="https://canvas.school.edu/courses/1/files/9/download?wrap=1">hw1</a>`,
	}
	api.files["9"] = &canvas.File{
		ID:          9,
		DisplayName: "hw1.pdf",
		URL:         "https://canvas.school.edu/files/9/download?verifier=abc",
	}
	api.bodies["https://canvas.school.edu/files/9/download?verifier=abc"] = "pdf-bytes"

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("hw"), []string{"CS101"}, 1))

	content, err := os.ReadFile(pagePath(store, "CS101", "hw1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

func TestRenderIgnoresForeignLinks(t *testing.T) {
	api := newFakeAPI()
	api.pages["links"] = &canvas.Page{
		URL: "links", Title: "Links",
		Body: `<a href="https://other.school.edu/files/1/download">elsewhere</a>` +
			`<a href="https://example.com/pages/welcome">elsewhere too</a>`,
	}

	r, _ := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("links"), []string{"CS101"}, 1))

	assert.Empty(t, api.fetchCalls)
	assert.Equal(t, 1, len(api.pageCalls))
}

func TestRenderRejectsInvalidPageURL(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestRenderer(t, api)

	err := r.Render(1, "ftp://canvas.school.edu/courses/1/pages/x", []string{"CS101"}, 1)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeInvalidInput, errs.Category(err))

	err = r.Render(1, "https://canvas.school.edu/courses/1/assignments/5", []string{"CS101"}, 1)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeInvalidInput, errs.Category(err))
}

func TestRenderSkipsEmptyPage(t *testing.T) {
	api := newFakeAPI()
	api.pages["blank"] = &canvas.Page{URL: "blank", Title: "Blank", Body: ""}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("blank"), []string{"CS101"}, 1))

	_, err := os.Stat(pagePath(store, "CS101", "Blank.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderUntitledPageFallback(t *testing.T) {
	api := newFakeAPI()
	api.pages["mystery"] = &canvas.Page{URL: "mystery", Title: "  ", Body: "<p>?</p>"}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("mystery"), []string{"CS101"}, 1))

	_, err := os.Stat(pagePath(store, "CS101", "Untitled Page.html"))
	assert.NoError(t, err)
}

func TestRenderMissingRootPageFails(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestRenderer(t, api)

	err := r.Render(1, pageWebURL("gone"), []string{"CS101"}, 1)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNotFound, errs.Category(err))
}

func TestRenderMissingLinkedPageIsSkipped(t *testing.T) {
	api := newFakeAPI()
	api.pages["root"] = &canvas.Page{
		URL: "root", Title: "Root",
		Body: `<a href="https://canvas.school.edu/courses/1/pages/gone">dangling</a>`,
	}

	r, store := newTestRenderer(t, api)
	require.NoError(t, r.Render(1, pageWebURL("root"), []string{"CS101"}, 1))

	assert.Equal(t, 1, api.pageCalls["gone"])
	_, err := os.Stat(pagePath(store, "CS101", "Root.html"))
	assert.NoError(t, err)
}
