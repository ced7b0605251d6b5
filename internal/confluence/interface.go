package confluence

// ConfluenceClient defines the wiki operations the publisher depends on.
type ConfluenceClient interface {
	FindPageByTitle(spaceKey, title string) (*PageRecord, error)
	CreatePage(spaceKey, title, content, ancestorID string) (*PageRecord, error)
	UpdatePage(pageID, title, content string, version int, ancestorID string) (*PageRecord, error)
	DeletePage(pageID string) error
	FindAttachment(pageID, filename string) (string, error)
	UploadAttachment(uploadURL, filePath, comment string) error
	GetPage(pageID string) (*Page, error)
}

// Ensure Client implements the interface
var _ ConfluenceClient = (*Client)(nil)
