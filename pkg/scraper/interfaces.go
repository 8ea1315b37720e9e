package scraper

import (
	"net/http"

	"canvasgrab/pkg/canvas"
)

// API is the Canvas client surface the traversal consumes. canvas.Client
// implements it; tests substitute fakes.
type API interface {
	Domain() string
	Courses(onlyFavorites bool) ([]canvas.Course, error)
	Folders(courseID int) ([]canvas.Folder, error)
	Modules(courseID int) ([]canvas.Module, error)
	ModuleItems(courseID, moduleID int) ([]canvas.ModuleItem, error)
	FolderFiles(folderID int, recent bool) ([]canvas.File, error)
	FileByID(courseID int, fileID string) (*canvas.File, error)
	FolderByID(courseID, folderID int) (*canvas.Folder, error)
	Pages(courseID int) ([]canvas.PageStub, error)
	PageBySlug(courseID int, slug string) (*canvas.Page, error)
	Head(url string) (*http.Response, error)
	Fetch(url string) (*http.Response, error)
}
