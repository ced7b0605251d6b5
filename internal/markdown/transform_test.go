package markdown

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write markdown fixture: %v", err)
	}
	return path
}

func TestTransformExtractsTitle(t *testing.T) {
	path := writeMarkdown(t, "# My Page Title\n\nSome paragraph.\n")

	doc, err := Transform(path, false)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if doc.Title != "My Page Title" {
		t.Errorf("Expected title 'My Page Title', got '%s'", doc.Title)
	}

	storage, err := doc.Storage()
	if err != nil {
		t.Fatalf("Storage failed: %v", err)
	}
	if strings.Contains(storage, "<h1") {
		t.Errorf("Expected title heading to be removed from body, got: %s", storage)
	}
	if !strings.Contains(storage, "<p>Some paragraph.</p>") {
		t.Errorf("Expected paragraph in body, got: %s", storage)
	}
}

func TestTransformMissingTitle(t *testing.T) {
	path := writeMarkdown(t, "## Only a subheading\n\nBody text.\n")

	_, err := Transform(path, false)
	if !errors.Is(err, ErrMissingTitle) {
		t.Fatalf("Expected ErrMissingTitle, got: %v", err)
	}
}

func TestTransformMissingFile(t *testing.T) {
	_, err := Transform(filepath.Join(t.TempDir(), "nope.md"), false)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestTransformSecondHeadingStays(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\n# Another H1\n\ntext\n")

	doc, err := Transform(path, false)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if doc.Title != "Title" {
		t.Errorf("Expected first heading as title, got '%s'", doc.Title)
	}
	storage, _ := doc.Storage()
	if !strings.Contains(storage, "Another H1") {
		t.Errorf("Expected second h1 left in body, got: %s", storage)
	}
}

func TestTransformTOCFirstChild(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\n## Section\n\n### Subsection\n\ntext\n")

	doc, err := Transform(path, true)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	storage, err := doc.Storage()
	if err != nil {
		t.Fatalf("Storage failed: %v", err)
	}

	if !strings.HasPrefix(storage, `<ac:structured-macro ac:name="toc">`) {
		t.Errorf("Expected TOC macro as first child of body, got: %s", storage)
	}
	if strings.Count(storage, `ac:name="toc"`) != 1 {
		t.Errorf("Expected exactly one TOC macro, got: %s", storage)
	}

	for _, param := range []string{
		`<ac:parameter ac:name="printable">true</ac:parameter>`,
		`<ac:parameter ac:name="style">disc</ac:parameter>`,
		`<ac:parameter ac:name="maxLevel">5</ac:parameter>`,
		`<ac:parameter ac:name="minLevel">1</ac:parameter>`,
		`<ac:parameter ac:name="include"></ac:parameter>`,
		`<ac:parameter ac:name="exclude"></ac:parameter>`,
		`<ac:parameter ac:name="type">list</ac:parameter>`,
		`<ac:parameter ac:name="outline">false</ac:parameter>`,
	} {
		if !strings.Contains(storage, param) {
			t.Errorf("Expected TOC parameter %s, got: %s", param, storage)
		}
	}
}

func TestImagesInDocumentOrder(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\n![first](a.png)\n\ntext\n\n![second](b.png)\n")

	doc, err := Transform(path, false)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	images := doc.Images()
	if len(images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(images))
	}
	if images[0].Src() != "a.png" || images[1].Src() != "b.png" {
		t.Errorf("Expected a.png then b.png, got '%s' then '%s'", images[0].Src(), images[1].Src())
	}
	if !doc.HasLocalImages() {
		t.Error("Expected HasLocalImages to be true")
	}
}

func TestImageRefIsLocal(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\n![remote](https://example.com/x.png)\n\n![local](images/y.png)\n")

	doc, err := Transform(path, false)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	images := doc.Images()
	if len(images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(images))
	}
	if images[0].IsLocal() {
		t.Error("Expected absolute URL to not be local")
	}
	if !images[1].IsLocal() {
		t.Error("Expected relative path to be local")
	}
}

func TestSetSrcRewritesInPlace(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\n![img](a.png)\n")

	doc, err := Transform(path, false)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	doc.Images()[0].SetSrc("/wiki/download/attachments/123/a.png")

	storage, _ := doc.Storage()
	if !strings.Contains(storage, `src="/wiki/download/attachments/123/a.png"`) {
		t.Errorf("Expected rewritten src in storage output, got: %s", storage)
	}
	if strings.Contains(storage, `src="a.png"`) {
		t.Errorf("Expected original src to be gone, got: %s", storage)
	}
}

func TestTransformNoLocalImages(t *testing.T) {
	path := writeMarkdown(t, "# Title\n\n![remote](https://example.com/x.png)\n")

	doc, err := Transform(path, false)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if doc.HasLocalImages() {
		t.Error("Expected no local images")
	}
}
