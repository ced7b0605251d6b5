package publisher

import (
	"errors"
	"fmt"

	"confpub/internal/attachments"
	"confpub/internal/confluence"
	"confpub/internal/markdown"
	"confpub/pkg/logger"
)

// ErrPageDeleted marks the end of a delete run. Deletion is a terminal
// action, not a success path: the process exits nonzero whether or not a
// page was actually removed. Callers discriminate with errors.Is.
var ErrPageDeleted = errors.New("page deletion requested; run is complete")

// AncestorNotFoundError means the requested parent page does not exist in
// the target space.
type AncestorNotFoundError struct {
	Title    string
	SpaceKey string
}

func (e *AncestorNotFoundError) Error() string {
	return fmt.Sprintf("ancestor page '%s' not found in space '%s'", e.Title, e.SpaceKey)
}

// Request describes one publish (or delete) run.
type Request struct {
	Document         *markdown.Document
	SpaceKey         string
	AncestorTitle    string
	ExtraAttachments []string
	Delete           bool
}

// Publisher reconciles a local document against the remote page addressed by
// (spaceKey, title): create it when absent, update it in place when present,
// or delete it.
type Publisher struct {
	client   confluence.ConfluenceClient
	resolver *attachments.Resolver
	logger   *logger.Logger
}

func New(client confluence.ConfluenceClient, log *logger.Logger) *Publisher {
	return &Publisher{
		client:   client,
		resolver: attachments.New(client, log),
		logger:   log,
	}
}

// The run is a small state machine rather than recursive calls: a create
// with attachments transitions into the update state so media can be
// uploaded against the fresh page id and the body republished with
// corrected references.
type state int

const (
	stateLookup state = iota
	stateDeleting
	stateCreating
	stateUpdating
	stateDone
)

// Run executes the reconciliation and returns the final page record. A
// delete run returns ErrPageDeleted regardless of whether a page existed.
func (p *Publisher) Run(req Request) (*confluence.PageRecord, error) {
	title := req.Document.Title

	var (
		existing   *confluence.PageRecord
		result     *confluence.PageRecord
		ancestorID string
	)

	st := stateLookup
	for st != stateDone {
		switch st {
		case stateLookup:
			p.logger.Info("Checking for existing page '%s' in space '%s'", title, req.SpaceKey)
			found, err := p.client.FindPageByTitle(req.SpaceKey, title)
			if err != nil {
				return nil, fmt.Errorf("failed to look up page: %w", err)
			}
			existing = found

			if req.Delete {
				st = stateDeleting
				continue
			}

			ancestorID, err = p.resolveAncestor(req)
			if err != nil {
				return nil, err
			}

			if existing == nil {
				st = stateCreating
			} else {
				st = stateUpdating
			}

		case stateDeleting:
			if existing == nil {
				p.logger.Info("Page '%s' does not exist in space '%s'; nothing to delete", title, req.SpaceKey)
				return nil, ErrPageDeleted
			}
			p.logger.Info("Deleting page '%s' (ID: %s)", title, existing.ID)
			if err := p.client.DeletePage(existing.ID); err != nil {
				return nil, fmt.Errorf("failed to delete page: %w", err)
			}
			p.logger.Info("Deleted page '%s'", title)
			return nil, ErrPageDeleted

		case stateCreating:
			storage, err := req.Document.Storage()
			if err != nil {
				return nil, err
			}
			p.logger.Info("Creating page '%s' in space '%s'", title, req.SpaceKey)
			created, err := p.client.CreatePage(req.SpaceKey, title, storage, ancestorID)
			if err != nil {
				return nil, fmt.Errorf("failed to create page: %w", err)
			}
			p.logger.Info("Created page '%s' (ID: %s)", title, created.ID)

			if req.Document.HasLocalImages() || len(req.ExtraAttachments) > 0 {
				// Phase two: attachments need a page id, so rerun as
				// an update against the shell page just created.
				existing = created
				st = stateUpdating
				continue
			}

			result = created
			st = stateDone

		case stateUpdating:
			if err := p.resolver.ResolveImages(req.Document, existing); err != nil {
				return nil, err
			}
			if err := p.resolver.UploadFiles(existing, req.ExtraAttachments); err != nil {
				return nil, err
			}

			storage, err := req.Document.Storage()
			if err != nil {
				return nil, err
			}

			nextVersion := existing.Version + 1
			p.logger.Info("Updating page '%s' (ID: %s, version %d)", title, existing.ID, nextVersion)
			updated, err := p.client.UpdatePage(existing.ID, title, storage, nextVersion, ancestorID)
			if err != nil {
				return nil, fmt.Errorf("failed to update page: %w", err)
			}

			result = updated
			st = stateDone
		}
	}

	p.logger.Info("Published '%s' at %s", title, result.Link)
	return result, nil
}

func (p *Publisher) resolveAncestor(req Request) (string, error) {
	if req.AncestorTitle == "" {
		return "", nil
	}
	p.logger.Info("Resolving ancestor page '%s'", req.AncestorTitle)
	ancestor, err := p.client.FindPageByTitle(req.SpaceKey, req.AncestorTitle)
	if err != nil {
		return "", fmt.Errorf("failed to look up ancestor page: %w", err)
	}
	if ancestor == nil {
		return "", &AncestorNotFoundError{Title: req.AncestorTitle, SpaceKey: req.SpaceKey}
	}
	return ancestor.ID, nil
}
