package confluence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-querystring/query"

	"confpub/pkg/logger"
)

type Client struct {
	baseURL  string
	username string
	apiToken string
	client   *http.Client
	logger   *logger.Logger
}

// PageRecord is a snapshot of a remote page's identity at lookup time: its
// id, its optimistic-concurrency version, and an absolute link to it.
type PageRecord struct {
	ID      string
	Version int
	Link    string
}

// Page carries the full content of a page, used by the get command.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
}

type contentResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

type contentSearchQuery struct {
	SpaceKey string `url:"spaceKey"`
	Title    string `url:"title"`
	Expand   string `url:"expand"`
}

// NewClient returns a client for the wiki at baseURL (including the /wiki
// prefix), authenticating every request with basic auth.
func NewClient(baseURL, username, apiToken string, log *logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		apiToken: apiToken,
		client:   &http.Client{},
		logger:   log,
	}
}

// FindPageByTitle looks up a page by (spaceKey, title). It returns nil when
// no page matches; a 404 from the endpoint itself is a *NotFoundError.
func (c *Client) FindPageByTitle(spaceKey, title string) (*PageRecord, error) {
	params, err := query.Values(contentSearchQuery{
		SpaceKey: spaceKey,
		Title:    title,
		Expand:   "version,ancestors",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	reqURL := c.baseURL + "/rest/api/content?" + params.Encode()
	resp, err := c.do("GET", reqURL, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{URL: reqURL}
	}
	if err := c.checkStatus(resp, reqURL); err != nil {
		return nil, err
	}

	var result struct {
		Results []contentResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if len(result.Results) == 0 {
		return nil, nil
	}
	return c.toRecord(result.Results[0]), nil
}

// CreatePage creates a new page with the given storage-format body,
// optionally nested under ancestorID.
func (c *Client) CreatePage(spaceKey, title, content, ancestorID string) (*PageRecord, error) {
	payload := map[string]interface{}{
		"type":  "page",
		"title": title,
		"space": map[string]string{"key": spaceKey},
		"body": map[string]interface{}{
			"storage": map[string]interface{}{
				"value":          content,
				"representation": "storage",
			},
		},
	}
	if ancestorID != "" {
		payload["ancestors"] = []map[string]string{
			{"type": "page", "id": ancestorID},
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page data: %w", err)
	}

	reqURL := c.baseURL + "/rest/api/content/"
	resp, err := c.do("POST", reqURL, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, reqURL); err != nil {
		return nil, err
	}

	var result contentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}
	return c.toRecord(result), nil
}

// UpdatePage replaces the page's title, body, and ancestors. version must be
// the looked-up version plus one; the service rejects stale values, which is
// the usual sign of a concurrent edit.
func (c *Client) UpdatePage(pageID, title, content string, version int, ancestorID string) (*PageRecord, error) {
	payload := map[string]interface{}{
		"id":    pageID,
		"type":  "page",
		"title": title,
		"body": map[string]interface{}{
			"storage": map[string]interface{}{
				"value":          content,
				"representation": "storage",
			},
		},
		"version": map[string]interface{}{
			"number": version,
		},
	}
	if ancestorID != "" {
		payload["ancestors"] = []map[string]string{
			{"type": "page", "id": ancestorID},
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page data: %w", err)
	}

	reqURL := c.baseURL + "/rest/api/content/" + pageID
	resp, err := c.do("PUT", reqURL, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, reqURL); err != nil {
		return nil, err
	}

	var result contentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode update response: %w", err)
	}
	return c.toRecord(result), nil
}

// DeletePage removes the page. Success is HTTP 204.
func (c *Client) DeletePage(pageID string) error {
	reqURL := c.baseURL + "/rest/api/content/" + pageID
	resp, err := c.do("DELETE", reqURL, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &RemoteError{StatusCode: resp.StatusCode, URL: reqURL, Body: string(body)}
	}
	return nil
}

// GetPage fetches a page's storage-format body and version by id.
func (c *Client) GetPage(pageID string) (*Page, error) {
	reqURL := c.baseURL + "/rest/api/content/" + pageID + "?expand=body.storage,version"
	resp, err := c.do("GET", reqURL, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{URL: reqURL}
	}
	if err := c.checkStatus(resp, reqURL); err != nil {
		return nil, err
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode page response: %w", err)
	}
	return &page, nil
}

func (c *Client) toRecord(r contentResult) *PageRecord {
	return &PageRecord{
		ID:      r.ID,
		Version: r.Version.Number,
		Link:    c.baseURL + r.Links.WebUI,
	}
}

func (c *Client) do(method, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// checkStatus turns any non-2xx response into a *RemoteError carrying the
// body.
func (c *Client) checkStatus(resp *http.Response, url string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return &RemoteError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
}
