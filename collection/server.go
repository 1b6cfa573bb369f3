package collection

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
)

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrBlueprintNotFound = errors.New("collection references an unknown blueprint")
)

type CreateRequest struct {
	Title        string
	Description  string
	BlueprintIDs []model.BlueprintID
}

// UpdateRequest carries the submitted fields of an edit. Nil fields were not
// submitted and keep their stored value. A non-nil BlueprintIDs replaces the
// stored list.
type UpdateRequest struct {
	Title        *string
	Description  *string
	BlueprintIDs []model.BlueprintID
}

type Server struct {
	log *zap.Logger

	gate        *gate.Gate
	collections Store
	blueprints  blueprint.Store
}

func NewServer(log *zap.Logger, g *gate.Gate, collections Store, blueprints blueprint.Store) *Server {
	return &Server{
		log:         log,
		gate:        g,
		collections: collections,
		blueprints:  blueprints,
	}
}

// Create stores a collection. Under the default reject policy, content that
// fails moderation returns a *gate.RejectionError and nothing is written.
func (s *Server) Create(ctx context.Context, owner *account.User, req *CreateRequest) (*Collection, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	blueprintIDs, err := s.resolveBlueprints(ctx, req.BlueprintIDs)
	if err != nil {
		return nil, err
	}

	modReq := moderation.NewRequest().
		AddText(title, "Title").
		AddText(req.Description, "Description")

	decision, err := s.gate.Screen(ctx, gate.ContentTypeCollection, modReq)
	if err != nil {
		return nil, err
	}

	id, err := model.GenerateCollectionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Collection{
		ID:           id,
		OwnerID:      owner.ID,
		Title:        title,
		Description:  req.Description,
		Status:       StatusPublished,
		BlueprintIDs: blueprintIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if decision.Action == gate.ActionReview {
		c.Status = StatusNeedsReview
	}

	if err := s.collections.CreateCollection(ctx, c); err != nil {
		s.log.Warn("Failed to create collection", zap.Error(err), zap.String("owner_id", owner.ID.String()))
		return nil, err
	}

	if decision.Action == gate.ActionReview {
		s.gate.NotifyModerators(ctx, gate.Subject{
			ContentType: gate.ContentTypeCollection,
			ID:          c.ID.String(),
			Title:       c.Title,
			Author:      owner,
		}, decision.Verdict)
	}

	return c, nil
}

// Update edits a collection owned by the caller. Only the submitted text
// fields are moderated.
func (s *Server) Update(ctx context.Context, caller *account.User, id model.CollectionID, req *UpdateRequest) (*Collection, error) {
	existing, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != caller.ID && !caller.IsAdmin {
		return nil, account.ErrPermissionDenied
	}

	modReq := moderation.NewRequest()
	updated := existing.Clone()

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		modReq.AddText(title, "Title")
		updated.Title = title
	}
	if req.Description != nil {
		modReq.AddText(*req.Description, "Description")
		updated.Description = *req.Description
	}
	if req.BlueprintIDs != nil {
		updated.BlueprintIDs, err = s.resolveBlueprints(ctx, req.BlueprintIDs)
		if err != nil {
			return nil, err
		}
	}

	decision, err := s.gate.Screen(ctx, gate.ContentTypeCollection, modReq)
	if err != nil {
		return nil, err
	}

	if decision.Action == gate.ActionReview {
		updated.Status = StatusNeedsReview
	}
	updated.UpdatedAt = time.Now()

	if err := s.collections.UpdateCollection(ctx, updated); err != nil {
		s.log.Warn("Failed to update collection", zap.Error(err), zap.String("collection_id", id.String()))
		return nil, err
	}

	if decision.Action == gate.ActionReview {
		title := existing.Title
		if req.Title != nil {
			title = updated.Title
		}

		// An administrator editing someone else's collection is not its author
		author := caller
		if existing.OwnerID != caller.ID {
			author = nil
		}

		s.gate.NotifyModerators(ctx, gate.Subject{
			ContentType: gate.ContentTypeCollection,
			ID:          id.String(),
			Title:       title,
			Author:      author,
		}, decision.Verdict)
	}

	return updated, nil
}

// Get returns a collection visible to the caller, which may be nil.
func (s *Server) Get(ctx context.Context, caller *account.User, id model.CollectionID) (*Collection, error) {
	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status == StatusNeedsReview {
		if caller == nil || (!caller.IsAdmin && caller.ID != c.OwnerID) {
			return nil, ErrNotFound
		}
	}
	return c, nil
}

// resolveBlueprints checks that every blueprint exists and drops duplicates,
// keeping the first occurrence.
func (s *Server) resolveBlueprints(ctx context.Context, ids []model.BlueprintID) ([]model.BlueprintID, error) {
	seen := make(map[model.BlueprintID]struct{}, len(ids))
	resolved := make([]model.BlueprintID, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		_, err := s.blueprints.GetBlueprint(ctx, id)
		if errors.Is(err, blueprint.ErrNotFound) {
			return nil, errors.Wrap(ErrBlueprintNotFound, id.String())
		} else if err != nil {
			return nil, err
		}

		resolved = append(resolved, id)
	}
	return resolved, nil
}
