package confluence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/google/go-querystring/query"
)

// Attachment identifies an existing page attachment.
type Attachment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type attachmentQuery struct {
	Filename string `url:"filename"`
}

// FindAttachment returns the URL to POST filename's bytes to: the data
// endpoint of the matching attachment when one already exists on the page,
// or the page's attachment collection for a fresh upload.
func (c *Client) FindAttachment(pageID, filename string) (string, error) {
	params, err := query.Values(attachmentQuery{Filename: filename})
	if err != nil {
		return "", fmt.Errorf("failed to build attachment query: %w", err)
	}

	collectionURL := c.baseURL + "/rest/api/content/" + pageID + "/child/attachment"
	reqURL := collectionURL + "?" + params.Encode()
	resp, err := c.do("GET", reqURL, nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &NotFoundError{URL: reqURL}
	}
	if err := c.checkStatus(resp, reqURL); err != nil {
		return "", err
	}

	var result struct {
		Results []Attachment `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode attachment response: %w", err)
	}

	if len(result.Results) == 0 {
		return collectionURL, nil
	}
	if c.logger != nil {
		c.logger.Debug("Attachment '%s' already exists, replacing it", filename)
	}
	return collectionURL + "/" + result.Results[0].ID + "/data", nil
}

// UploadAttachment posts the file's current bytes to uploadURL as a
// multipart form. The MIME type is sniffed from the filename.
func (c *Client) UploadAttachment(uploadURL, filePath, comment string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open attachment file: %w", err)
	}
	defer file.Close()

	filename := filepath.Base(filePath)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("comment", comment); err != nil {
		return fmt.Errorf("failed to write comment field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read attachment file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequest("POST", uploadURL, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	return c.checkStatus(resp, uploadURL)
}
