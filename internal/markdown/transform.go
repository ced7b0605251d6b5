package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrMissingTitle is returned when the markdown source has no top-level
// heading to use as the page title.
var ErrMissingTitle = errors.New("markdown document has no top-level heading")

// Document is the storage-format document tree produced from one markdown
// file. The tree is mutated in place: the title heading is removed at
// construction, the TOC macro may be prepended, and image sources are
// rewritten after attachments are uploaded.
type Document struct {
	Title    string
	FilePath string

	doc *goquery.Document
}

// engine is stateless and safe to share across calls.
var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.TaskList,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// Transform reads a markdown file and renders it into a storage-format
// document tree. The first top-level heading becomes the page title and is
// removed from the body. With withTOC set, a table-of-contents macro is
// inserted as the first child of the body.
func Transform(filePath string, withTOC bool) (*Document, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %w", err)
	}

	var rendered bytes.Buffer
	if err := engine.Convert(source, &rendered); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered document: %w", err)
	}

	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, ErrMissingTitle)
	}
	title := strings.TrimSpace(heading.Text())
	heading.Remove()

	if withTOC {
		doc.Find("body").PrependHtml(tocMacro())
	}

	return &Document{
		Title:    title,
		FilePath: filePath,
		doc:      doc,
	}, nil
}

// Storage serializes the document body back into Confluence storage-format
// markup.
func (d *Document) Storage() (string, error) {
	markup, err := d.doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	return strings.TrimSpace(markup), nil
}

// Images returns the document's image references in document order.
func (d *Document) Images() []*ImageRef {
	var refs []*ImageRef
	d.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		refs = append(refs, &ImageRef{sel: s})
	})
	return refs
}

// HasLocalImages reports whether any image reference points at a local file
// rather than an absolute URL.
func (d *Document) HasLocalImages() bool {
	for _, ref := range d.Images() {
		if ref.IsLocal() {
			return true
		}
	}
	return false
}

// ImageRef is a single <img> node inside a Document.
type ImageRef struct {
	sel *goquery.Selection
}

// Src returns the current image source attribute.
func (r *ImageRef) Src() string {
	src, _ := r.sel.Attr("src")
	return src
}

// SetSrc rewrites the image source attribute in place.
func (r *ImageRef) SetSrc(src string) {
	r.sel.SetAttr("src", src)
}

// IsLocal reports whether the source has no URL scheme and therefore refers
// to a file next to the markdown source.
func (r *ImageRef) IsLocal() bool {
	u, err := url.Parse(r.Src())
	if err != nil {
		// An unparseable src is treated as a local path; the resolver
		// will fail on the missing file with a clearer message.
		return true
	}
	return u.Scheme == ""
}
