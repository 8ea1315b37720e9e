package canvas

// Module item types as reported by the modules API
const (
	ItemTypeFile        = "File"
	ItemTypeExternalURL = "ExternalUrl"
	ItemTypePage        = "Page"
)

// Course is one enrollment returned by the course listing
type Course struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

// Folder is a node in a course's file tree. FullName is the slash-separated
// hierarchical name rooted at "course files".
type Folder struct {
	ID         int    `json:"id"`
	FullName   string `json:"full_name"`
	FilesCount int    `json:"files_count"`
}

// Module is an ordered group of module items
type Module struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ItemsCount int    `json:"items_count"`
}

// ModuleItem is one typed entry of a module. Only the fields relevant to its
// Type are populated by the API.
type ModuleItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	ContentID   int    `json:"content_id"`
	ExternalURL string `json:"external_url"`
	PageURL     string `json:"page_url"`
}

// File is a downloadable attachment
type File struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	FolderID    int    `json:"folder_id"`
	Size        int64  `json:"size"`
}

// PageStub is one entry of the pages listing; URL is the page slug
type PageStub struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Page is a full wiki page with its rendered HTML body
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// apiError is the error object Canvas embeds in error payloads
type apiError struct {
	Message string `json:"message"`
}

// errorPayload is the shape Canvas returns instead of a list or object when a
// request fails at the application level despite a 200 status
type errorPayload struct {
	Errors []apiError `json:"errors"`
}
