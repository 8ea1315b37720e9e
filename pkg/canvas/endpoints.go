package canvas

import (
	"fmt"
	"net/url"
)

// apiBase constructs the REST API root for a Canvas domain
func apiBase(domain string) string {
	return fmt.Sprintf("https://%s/api/v1", domain)
}

// listParams builds the shared pagination query
func listParams(pageSize int) url.Values {
	params := url.Values{}
	params.Set("per_page", fmt.Sprintf("%d", pageSize))
	return params
}

// CoursesURL constructs the URL for the course listing. With onlyFavorites
// set, only the courses the user starred appear.
func CoursesURL(domain string, onlyFavorites bool, pageSize int) string {
	endpoint := "courses"
	if onlyFavorites {
		endpoint = "users/self/favorites/courses"
	}
	return fmt.Sprintf("%s/%s?%s", apiBase(domain), endpoint, listParams(pageSize).Encode())
}

// FoldersURL constructs the URL for a course's folder listing
func FoldersURL(domain string, courseID, pageSize int) string {
	return fmt.Sprintf("%s/courses/%d/folders?%s", apiBase(domain), courseID, listParams(pageSize).Encode())
}

// ModulesURL constructs the URL for a course's module listing
func ModulesURL(domain string, courseID, pageSize int) string {
	return fmt.Sprintf("%s/courses/%d/modules?%s", apiBase(domain), courseID, listParams(pageSize).Encode())
}

// ModuleItemsURL constructs the URL for one module's item listing
func ModuleItemsURL(domain string, courseID, moduleID, pageSize int) string {
	return fmt.Sprintf("%s/courses/%d/modules/%d/items?%s", apiBase(domain), courseID, moduleID, listParams(pageSize).Encode())
}

// FolderFilesURL constructs the URL for a folder's file listing. With recent
// set, files sort newest-first by update time.
func FolderFilesURL(domain string, folderID, pageSize int, recent bool) string {
	params := listParams(pageSize)
	if recent {
		params.Set("sort", "updated_at")
		params.Set("order", "desc")
	}
	return fmt.Sprintf("%s/folders/%d/files?%s", apiBase(domain), folderID, params.Encode())
}

// FileURL constructs the URL for fetching one file's metadata by id
func FileURL(domain string, courseID int, fileID string) string {
	return fmt.Sprintf("%s/courses/%d/files/%s", apiBase(domain), courseID, fileID)
}

// FolderURL constructs the URL for fetching one folder's metadata by id
func FolderURL(domain string, courseID, folderID int) string {
	return fmt.Sprintf("%s/courses/%d/folders/%d", apiBase(domain), courseID, folderID)
}

// PagesURL constructs the URL for a course's wiki page listing
func PagesURL(domain string, courseID, pageSize int) string {
	return fmt.Sprintf("%s/courses/%d/pages?%s", apiBase(domain), courseID, listParams(pageSize).Encode())
}

// PageURL constructs the URL for fetching one wiki page by slug
func PageURL(domain string, courseID int, slug string) string {
	return fmt.Sprintf("%s/courses/%d/pages/%s", apiBase(domain), courseID, url.PathEscape(slug))
}

// PageWebURL constructs the browser-facing URL of a wiki page. Module items of
// type Page carry only a slug; the renderer works on full page URLs.
func PageWebURL(domain string, courseID int, slug string) string {
	return fmt.Sprintf("https://%s/courses/%d/pages/%s", domain, courseID, slug)
}
