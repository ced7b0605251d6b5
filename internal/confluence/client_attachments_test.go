package confluence

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindAttachmentFresh(t *testing.T) {
	client, transport := newTestClient()
	transport.addResponse("GET", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		struct {
			Results []Attachment `json:"results"`
		}{})

	uploadURL, err := client.FindAttachment("123", "a.png")
	if err != nil {
		t.Fatalf("FindAttachment failed: %v", err)
	}
	want := testBaseURL + "/rest/api/content/123/child/attachment"
	if uploadURL != want {
		t.Errorf("Expected collection URL '%s', got '%s'", want, uploadURL)
	}

	if got := transport.lastRequest().URL.Query().Get("filename"); got != "a.png" {
		t.Errorf("Expected filename filter 'a.png', got '%s'", got)
	}
}

func TestFindAttachmentExisting(t *testing.T) {
	client, transport := newTestClient()
	transport.addResponse("GET", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		struct {
			Results []Attachment `json:"results"`
		}{Results: []Attachment{{ID: "att1", Title: "a.png"}}})

	uploadURL, err := client.FindAttachment("123", "a.png")
	if err != nil {
		t.Fatalf("FindAttachment failed: %v", err)
	}
	want := testBaseURL + "/rest/api/content/123/child/attachment/att1/data"
	if uploadURL != want {
		t.Errorf("Expected data URL '%s', got '%s'", want, uploadURL)
	}
}

func TestFindAttachment404(t *testing.T) {
	client, transport := newTestClient()
	transport.addResponse("GET", "/wiki/rest/api/content/123/child/attachment", http.StatusNotFound, "gone")

	_, err := client.FindAttachment("123", "a.png")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got: %v", err)
	}
}

func TestUploadAttachment(t *testing.T) {
	client, transport := newTestClient()
	uploadURL := testBaseURL + "/rest/api/content/123/child/attachment"
	transport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment", http.StatusOK, "{}")

	path := filepath.Join(t.TempDir(), "diagram.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if err := client.UploadAttachment(uploadURL, path, "embedded image"); err != nil {
		t.Fatalf("UploadAttachment failed: %v", err)
	}

	req := transport.lastRequest()
	if req.Header.Get("X-Atlassian-Token") != "no-check" {
		t.Error("Expected X-Atlassian-Token: no-check header")
	}
	if !strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		t.Errorf("Expected multipart content type, got: %s", req.Header.Get("Content-Type"))
	}

	body := string(transport.lastBody())
	if !strings.Contains(body, `filename="diagram.png"`) {
		t.Errorf("Expected filename in multipart body, got: %s", body)
	}
	if !strings.Contains(body, "png-bytes") {
		t.Error("Expected file bytes in multipart body")
	}
	if !strings.Contains(body, "embedded image") {
		t.Error("Expected comment field in multipart body")
	}
	if !strings.Contains(body, "Content-Type: image/png") {
		t.Errorf("Expected sniffed MIME type in multipart body, got: %s", body)
	}
}

func TestUploadAttachmentRemoteError(t *testing.T) {
	client, transport := newTestClient()
	uploadURL := testBaseURL + "/rest/api/content/123/child/attachment"
	transport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment", http.StatusBadRequest, "rejected")

	path := filepath.Join(t.TempDir(), "a.png")
	os.WriteFile(path, []byte("x"), 0o644)

	err := client.UploadAttachment(uploadURL, path, "")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected RemoteError, got: %v", err)
	}
}

func TestUploadAttachmentMissingFile(t *testing.T) {
	client, _ := newTestClient()

	err := client.UploadAttachment(testBaseURL+"/rest/api/content/123/child/attachment",
		filepath.Join(t.TempDir(), "missing.png"), "")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}
