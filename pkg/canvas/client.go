// Package canvas wraps the authenticated Canvas REST API surface the mirror
// consumes: course, folder, module, item, file, and page listings, plus raw
// GET/HEAD access for file bodies.
package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"canvasgrab/pkg/errs"
	"canvasgrab/pkg/logger"
)

// Client performs authenticated requests against one Canvas instance
type Client struct {
	httpClient *http.Client
	domain     string
	token      string
	pageSize   int
	logger     logger.Logger
}

// NewClient creates a Canvas API client for a domain with a bearer token
func NewClient(domain, token string, timeout time.Duration, pageSize int, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		domain:     domain,
		token:      token,
		pageSize:   pageSize,
		logger:     log,
	}
}

// Domain returns the Canvas domain this client talks to
func (c *Client) Domain() string {
	return c.domain
}

// SetTransport replaces the underlying round tripper, keeping the timeout.
// Tests use this to route generated https URLs to a local server.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient = &http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: rt,
	}
}

// doRequest performs an HTTP request with the bearer token attached
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs an authenticated GET request to the specified URL
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeInvalidInput, "failed to create request: %v", err)
	}
	return c.doRequest(req)
}

// Head performs an authenticated HEAD request, used to probe a file's
// suggested name and byte length before downloading it
func (c *Client) Head(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeInvalidInput, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Fetch performs an authenticated GET and verifies the response status. The
// body is returned open so the caller can stream it to disk.
func (c *Client) Fetch(url string) (*http.Response, error) {
	resp, err := c.Get(url)
	if err != nil {
		return nil, err
	}
	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into target
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewWithCode(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := decodePayload(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return err
	}

	return nil
}

// decodePayload unmarshals an API payload, surfacing an embedded errors array
// as a server error. Canvas reports some application failures in the body of
// a 200 response.
func decodePayload(body []byte, target interface{}) error {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		return errs.New(errs.ErrorTypeServerError, "api error: %s", payload.Errors[0].Message)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errs.New(errs.ErrorTypeParsing, "failed to parse JSON: %v", err)
	}
	return nil
}

// checkResponseStatus maps an HTTP response status to a categorized error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.NewWithCode(errs.ErrorTypeAuth, resp.StatusCode, "authentication failed")
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.NewWithCode(errs.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.NewWithCode(errs.ErrorTypeServerError, resp.StatusCode, "server error")
	default:
		c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.NewWithCode(errs.ErrorTypeUnknown, resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
	}
}

// Courses returns the user's enrolled courses, or only the starred ones
func (c *Client) Courses(onlyFavorites bool) ([]Course, error) {
	var courses []Course
	if err := c.GetJSON(CoursesURL(c.domain, onlyFavorites, c.pageSize), &courses); err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// Folders returns all folders of a course
func (c *Client) Folders(courseID int) ([]Folder, error) {
	var folders []Folder
	if err := c.GetJSON(FoldersURL(c.domain, courseID, c.pageSize), &folders); err != nil {
		return nil, fmt.Errorf("listing folders of course %d: %w", courseID, err)
	}
	return folders, nil
}

// Modules returns all modules of a course
func (c *Client) Modules(courseID int) ([]Module, error) {
	var modules []Module
	if err := c.GetJSON(ModulesURL(c.domain, courseID, c.pageSize), &modules); err != nil {
		return nil, fmt.Errorf("listing modules of course %d: %w", courseID, err)
	}
	return modules, nil
}

// ModuleItems returns the items of one module
func (c *Client) ModuleItems(courseID, moduleID int) ([]ModuleItem, error) {
	var items []ModuleItem
	if err := c.GetJSON(ModuleItemsURL(c.domain, courseID, moduleID, c.pageSize), &items); err != nil {
		return nil, fmt.Errorf("listing items of module %d: %w", moduleID, err)
	}
	return items, nil
}

// FolderFiles returns the files of a folder, newest first when recent is set
func (c *Client) FolderFiles(folderID int, recent bool) ([]File, error) {
	var files []File
	if err := c.GetJSON(FolderFilesURL(c.domain, folderID, c.pageSize, recent), &files); err != nil {
		return nil, fmt.Errorf("listing files of folder %d: %w", folderID, err)
	}
	return files, nil
}

// FileByID returns one file's metadata
func (c *Client) FileByID(courseID int, fileID string) (*File, error) {
	var file File
	if err := c.GetJSON(FileURL(c.domain, courseID, fileID), &file); err != nil {
		return nil, fmt.Errorf("fetching file %s: %w", fileID, err)
	}
	return &file, nil
}

// FolderByID returns one folder's metadata
func (c *Client) FolderByID(courseID, folderID int) (*Folder, error) {
	var folder Folder
	if err := c.GetJSON(FolderURL(c.domain, courseID, folderID), &folder); err != nil {
		return nil, fmt.Errorf("fetching folder %d: %w", folderID, err)
	}
	return &folder, nil
}

// Pages returns the wiki page listing of a course. Courses without the pages
// feature respond 404.
func (c *Client) Pages(courseID int) ([]PageStub, error) {
	var pages []PageStub
	if err := c.GetJSON(PagesURL(c.domain, courseID, c.pageSize), &pages); err != nil {
		return nil, fmt.Errorf("listing pages of course %d: %w", courseID, err)
	}
	return pages, nil
}

// PageBySlug returns one wiki page with its HTML body
func (c *Client) PageBySlug(courseID int, slug string) (*Page, error) {
	var page Page
	if err := c.GetJSON(PageURL(c.domain, courseID, slug), &page); err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", slug, err)
	}
	return &page, nil
}
