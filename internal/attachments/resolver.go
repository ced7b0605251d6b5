package attachments

import (
	"fmt"
	"os"
	"path/filepath"

	"confpub/internal/confluence"
	"confpub/internal/markdown"
	"confpub/pkg/logger"
)

// Resolver uploads a document's local images as page attachments and
// rewrites their references to the served attachment path. It needs a real
// page id, so it only runs once the page exists.
type Resolver struct {
	client confluence.ConfluenceClient
	logger *logger.Logger
}

func New(client confluence.ConfluenceClient, log *logger.Logger) *Resolver {
	return &Resolver{client: client, logger: log}
}

// ResolveImages walks the document's image references in document order.
// Sources with a URL scheme are left untouched. Local sources are resolved
// against the markdown file's directory, uploaded, and rewritten to
// /wiki/download/attachments/{pageID}/{basename}. The first failure aborts;
// already-uploaded attachments are not rolled back.
func (r *Resolver) ResolveImages(doc *markdown.Document, page *confluence.PageRecord) error {
	dir := filepath.Dir(doc.FilePath)

	for _, ref := range doc.Images() {
		src := ref.Src()
		if !ref.IsLocal() {
			r.logger.Debug("Leaving remote image untouched: %s", src)
			continue
		}

		localPath := src
		if !filepath.IsAbs(localPath) {
			localPath = filepath.Join(dir, localPath)
		}

		basename := filepath.Base(localPath)
		if err := r.upload(page, localPath, basename, "embedded image"); err != nil {
			return err
		}

		ref.SetSrc(fmt.Sprintf("/wiki/download/attachments/%s/%s", page.ID, basename))
	}

	return nil
}

// UploadFiles uploads explicitly listed files as bare attachments with no
// document rewrite.
func (r *Resolver) UploadFiles(page *confluence.PageRecord, paths []string) error {
	for _, path := range paths {
		if err := r.upload(page, path, filepath.Base(path), "uploaded by confpub"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) upload(page *confluence.PageRecord, localPath, basename, comment string) error {
	if err := validateFile(localPath); err != nil {
		return err
	}

	uploadURL, err := r.client.FindAttachment(page.ID, basename)
	if err != nil {
		return fmt.Errorf("failed to resolve attachment '%s': %w", basename, err)
	}

	r.logger.Info("Uploading attachment %s", basename)
	if err := r.client.UploadAttachment(uploadURL, localPath, comment); err != nil {
		return fmt.Errorf("failed to upload attachment '%s': %w", basename, err)
	}
	return nil
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("attachment file not found: %s", path)
		}
		return fmt.Errorf("failed to access attachment file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("attachment path is not a regular file: %s", path)
	}
	return nil
}
