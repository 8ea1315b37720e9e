// Package scraper drives a mirror run: course listing, interactive
// confirmation, and the three per-course traversal strategies over modules,
// folders, and wiki pages.
package scraper

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"canvasgrab/pkg/canvas"
	"canvasgrab/pkg/downloader"
	"canvasgrab/pkg/errs"
	"canvasgrab/pkg/logger"
	"canvasgrab/pkg/page"
	"canvasgrab/pkg/storage"
	"canvasgrab/pkg/ui"
	"canvasgrab/pkg/urlutil"
)

// Traversal strategies selectable via the -f flag
const (
	FromModules = "modules"
	FromFolders = "folders"
	FromPages   = "pages"
	FromAll     = "all"
)

// ValidFrom reports whether from names a known strategy selection
func ValidFrom(from string) bool {
	switch from {
	case FromModules, FromFolders, FromPages, FromAll:
		return true
	}
	return false
}

// Options configures one mirror run
type Options struct {
	From        string
	AllCourses  bool
	TextOnly    bool
	AssumeYes   bool
	PagesFolder string
	ChunkSize   int
	Input       io.Reader
}

// Scraper mirrors course content for every confirmed course
type Scraper struct {
	api    API
	store  *storage.Manager
	logger logger.Logger
}

// New creates a scraper writing through store
func New(api API, store *storage.Manager, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{api: api, store: store, logger: log}
}

// Run lists courses, asks for confirmation, and mirrors each course with the
// selected strategy set. A declined confirmation ends the run without error.
// Authentication failures abort the whole run; filesystem failures abort the
// current course; everything else skips the failing unit and continues.
func (s *Scraper) Run(opts Options) error {
	if opts.PagesFolder == "" {
		opts.PagesFolder = "Files"
	}

	if opts.AllCourses {
		ui.PrintExisting(0, "Getting all courses...")
	} else {
		ui.PrintExisting(0, "Getting favorited courses (pass --all for every enrollment)...")
	}

	courses, err := s.api.Courses(!opts.AllCourses)
	if err != nil {
		return err
	}

	ui.PrintItem(0, "Retrieved course list:")
	for _, course := range courses {
		if course.CourseCode != "" {
			ui.PrintGroup(0, course.CourseCode)
		}
	}

	if !opts.AssumeYes && !s.confirm(opts.Input) {
		ui.PrintItem(0, "Exiting without downloading.")
		return nil
	}

	for _, course := range courses {
		if course.CourseCode == "" {
			ui.PrintItem(0, fmt.Sprintf("Course %d has no usable code, skipping", course.ID))
			s.logger.InfoWithFields("skipping course without code", map[string]interface{}{
				"course_id": course.ID,
			})
			continue
		}

		ui.PrintGroup(0, course.CourseCode)
		if err := s.runCourse(course, opts); err != nil {
			if errs.IsFatal(err) {
				return err
			}
			ui.PrintError(1, fmt.Sprintf("%s: %v", course.CourseCode, err))
		}
	}

	ui.PrintItem(0, "Finished downloading all available courses.")
	return nil
}

func (s *Scraper) confirm(input io.Reader) bool {
	if input == nil {
		input = os.Stdin
	}
	fmt.Print("Download all content from the listed courses? (y/N) ")
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}

// runCourse mirrors one course with a fresh download cache, so content shared
// between courses lands in each course's own tree
func (s *Scraper) runCourse(course canvas.Course, opts Options) error {
	cache := downloader.NewCache()
	dl := downloader.New(s.api, s.store, cache, opts.ChunkSize, opts.TextOnly, s.logger)
	renderer := page.NewRenderer(s.api, dl, s.store, opts.PagesFolder, opts.ChunkSize, s.logger)

	run := &courseRun{
		api:      s.api,
		logger:   s.logger,
		course:   course,
		segment:  course.CourseCode,
		dl:       dl,
		renderer: renderer,
	}

	var strategies []func() error
	switch opts.From {
	case FromModules:
		strategies = []func() error{run.fromModules}
	case FromFolders:
		strategies = []func() error{run.fromFolders}
	case FromPages:
		strategies = []func() error{run.fromPages}
	default:
		strategies = []func() error{run.fromModules, run.fromFolders, run.fromPages}
	}

	for _, strategy := range strategies {
		if err := strategy(); err != nil {
			return err
		}
	}
	return nil
}

// courseRun holds the per-course state of one traversal
type courseRun struct {
	api      API
	logger   logger.Logger
	course   canvas.Course
	segment  string
	dl       *downloader.Downloader
	renderer *page.Renderer
}

// skipOrFail reports a unit failure and decides whether it has to propagate.
// Auth errors doom the run and filesystem errors doom the course, so both
// bubble up; everything else is printed and swallowed.
func (r *courseRun) skipOrFail(err error, depth int, what string) error {
	if err == nil {
		return nil
	}
	if errs.IsFatal(err) || errs.AbortsCourse(err) {
		return err
	}
	ui.PrintError(depth, fmt.Sprintf("%s: %v", what, err))
	r.logger.WarnWithFields("skipping after error", map[string]interface{}{
		"unit":  what,
		"error": err.Error(),
	})
	return nil
}

// folderSegments maps a folder's hierarchical name to path segments below the
// course directory. The root segment is the API's literal "course files" and
// is dropped.
func (r *courseRun) folderSegments(fullName string) []string {
	parts := strings.Split(fullName, "/")
	return append([]string{r.segment}, parts[1:]...)
}

func (r *courseRun) fromModules() error {
	modules, err := r.api.Modules(r.course.ID)
	if err != nil {
		return r.skipOrFail(err, 1, "modules unavailable")
	}

	for _, module := range modules {
		if module.ItemsCount == 0 {
			continue
		}

		items, err := r.api.ModuleItems(r.course.ID, module.ID)
		if err != nil {
			if err := r.skipOrFail(err, 2, fmt.Sprintf("items of module %q", module.Name)); err != nil {
				return err
			}
			continue
		}

		ui.PrintItem(1, "[M] "+module.Name)
		moduleSegments := []string{r.segment, urlutil.ModuleFolderName(module.Name)}

		for _, item := range items {
			if err := r.moduleItem(item, moduleSegments); err != nil {
				return err
			}
		}
	}
	return nil
}

// moduleItem dispatches one module item by type. Items missing the fields
// their type requires are skipped individually.
func (r *courseRun) moduleItem(item canvas.ModuleItem, moduleSegments []string) error {
	switch item.Type {
	case canvas.ItemTypeFile:
		if item.ContentID == 0 {
			ui.PrintError(2, fmt.Sprintf("module item %q has no file id, skipping", item.Title))
			return nil
		}

		file, err := r.api.FileByID(r.course.ID, strconv.Itoa(item.ContentID))
		if err != nil {
			return r.skipOrFail(err, 2, item.Title)
		}
		if file.URL == "" {
			ui.PrintError(2, fmt.Sprintf("file %q has no download URL, skipping", item.Title))
			return nil
		}

		// Prefer the file's real folder placement over the module name
		segments := moduleSegments
		if folder, err := r.api.FolderByID(r.course.ID, file.FolderID); err == nil && folder.FullName != "" {
			segments = r.folderSegments(folder.FullName)
		}

		_, err = r.dl.Download(file.URL, segments, file.DisplayName, 2)
		return r.skipOrFail(err, 2, file.DisplayName)

	case canvas.ItemTypeExternalURL:
		if item.ExternalURL == "" || !urlutil.IsInstanceURL(r.api.Domain(), item.ExternalURL) {
			return nil
		}
		err := r.renderer.Render(r.course.ID, item.ExternalURL, []string{r.segment}, 2)
		return r.skipOrFail(err, 2, item.ExternalURL)

	case canvas.ItemTypePage:
		if item.PageURL == "" {
			ui.PrintError(2, fmt.Sprintf("module item %q has no page slug, skipping", item.Title))
			return nil
		}
		pageURL := canvas.PageWebURL(r.api.Domain(), r.course.ID, item.PageURL)
		err := r.renderer.Render(r.course.ID, pageURL, []string{r.segment}, 2)
		return r.skipOrFail(err, 2, item.PageURL)
	}
	return nil
}

func (r *courseRun) fromFolders() error {
	folders, err := r.api.Folders(r.course.ID)
	if err != nil {
		return r.skipOrFail(err, 1, "folders unavailable")
	}

	for _, folder := range folders {
		if folder.FilesCount == 0 {
			continue
		}

		files, err := r.api.FolderFiles(folder.ID, true)
		if err != nil {
			if err := r.skipOrFail(err, 2, fmt.Sprintf("files of folder %q", folder.FullName)); err != nil {
				return err
			}
			continue
		}

		ui.PrintItem(1, "[F] "+folder.FullName)
		segments := r.folderSegments(folder.FullName)

		for _, file := range files {
			if file.URL == "" {
				ui.PrintError(2, fmt.Sprintf("file %q has no download URL, skipping", file.DisplayName))
				continue
			}
			if _, err := r.dl.Download(file.URL, segments, file.DisplayName, 2); err != nil {
				if err := r.skipOrFail(err, 2, file.DisplayName); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *courseRun) fromPages() error {
	stubs, err := r.api.Pages(r.course.ID)
	if err != nil {
		// Courses without the wiki feature respond 404 here
		if errs.IsFatal(err) || errs.AbortsCourse(err) {
			return err
		}
		ui.PrintError(1, fmt.Sprintf("pages are not enabled for %s, skipping", r.course.CourseCode))
		return nil
	}
	if len(stubs) == 0 {
		ui.PrintError(1, fmt.Sprintf("no pages found for %s", r.course.CourseCode))
		return nil
	}

	ui.PrintNew(1, fmt.Sprintf("Found %d pages in %s", len(stubs), r.course.CourseCode))
	for _, stub := range stubs {
		if stub.URL == "" {
			ui.PrintError(2, "page entry without a slug, skipping")
			continue
		}
		pageURL := canvas.PageWebURL(r.api.Domain(), r.course.ID, stub.URL)
		if err := r.renderer.Render(r.course.ID, pageURL, []string{r.segment}, 2); err != nil {
			if err := r.skipOrFail(err, 2, stub.URL); err != nil {
				return err
			}
		}
	}
	return nil
}
