package confluence

import "fmt"

// CreateCall records one CreatePage invocation for assertions.
type CreateCall struct {
	SpaceKey   string
	Title      string
	Content    string
	AncestorID string
}

// UpdateCall records one UpdatePage invocation for assertions.
type UpdateCall struct {
	PageID     string
	Title      string
	Content    string
	Version    int
	AncestorID string
}

// UploadCall records one UploadAttachment invocation for assertions.
type UploadCall struct {
	URL      string
	FilePath string
	Comment  string
}

// MockClient is an in-memory implementation of ConfluenceClient for tests.
// Created pages are registered so a second lookup finds them, which lets
// tests exercise the create-then-update re-run path.
type MockClient struct {
	PagesByTitle map[string]*PageRecord // spaceKey:title -> record
	Bodies       map[string]string      // pageID -> storage markup
	Existing     map[string][]string    // pageID -> filenames already attached

	CreateCalls []CreateCall
	UpdateCalls []UpdateCall
	DeleteCalls []string
	Uploads     []UploadCall

	FindErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	UploadErr error

	nextID int
}

func NewMockClient() *MockClient {
	return &MockClient{
		PagesByTitle: make(map[string]*PageRecord),
		Bodies:       make(map[string]string),
		Existing:     make(map[string][]string),
	}
}

func (m *MockClient) key(spaceKey, title string) string { return spaceKey + ":" + title }

// AddPage seeds an existing remote page.
func (m *MockClient) AddPage(spaceKey, title, pageID string, version int) *PageRecord {
	rec := &PageRecord{ID: pageID, Version: version, Link: "https://example.atlassian.net/wiki/spaces/" + spaceKey + "/pages/" + pageID}
	m.PagesByTitle[m.key(spaceKey, title)] = rec
	return rec
}

func (m *MockClient) FindPageByTitle(spaceKey, title string) (*PageRecord, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.PagesByTitle[m.key(spaceKey, title)], nil
}

func (m *MockClient) CreatePage(spaceKey, title, content, ancestorID string) (*PageRecord, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	rec := &PageRecord{
		ID:      fmt.Sprintf("page-%d", m.nextID),
		Version: 1,
		Link:    "https://example.atlassian.net/wiki/spaces/" + spaceKey + "/pages/" + fmt.Sprintf("page-%d", m.nextID),
	}
	m.PagesByTitle[m.key(spaceKey, title)] = rec
	m.Bodies[rec.ID] = content
	m.CreateCalls = append(m.CreateCalls, CreateCall{SpaceKey: spaceKey, Title: title, Content: content, AncestorID: ancestorID})
	return rec, nil
}

func (m *MockClient) UpdatePage(pageID, title, content string, version int, ancestorID string) (*PageRecord, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.Bodies[pageID] = content
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{PageID: pageID, Title: title, Content: content, Version: version, AncestorID: ancestorID})
	for _, rec := range m.PagesByTitle {
		if rec.ID == pageID {
			rec.Version = version
			return rec, nil
		}
	}
	return &PageRecord{ID: pageID, Version: version}, nil
}

func (m *MockClient) DeletePage(pageID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeleteCalls = append(m.DeleteCalls, pageID)
	return nil
}

func (m *MockClient) FindAttachment(pageID, filename string) (string, error) {
	base := "/rest/api/content/" + pageID + "/child/attachment"
	for _, name := range m.Existing[pageID] {
		if name == filename {
			return base + "/att-" + filename + "/data", nil
		}
	}
	return base, nil
}

func (m *MockClient) UploadAttachment(uploadURL, filePath, comment string) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.Uploads = append(m.Uploads, UploadCall{URL: uploadURL, FilePath: filePath, Comment: comment})
	return nil
}

func (m *MockClient) GetPage(pageID string) (*Page, error) {
	body, ok := m.Bodies[pageID]
	if !ok {
		return nil, &NotFoundError{URL: "/rest/api/content/" + pageID}
	}
	page := &Page{ID: pageID}
	page.Body.Storage.Value = body
	page.Version.Number = 1
	return page, nil
}

var _ ConfluenceClient = (*MockClient)(nil)
