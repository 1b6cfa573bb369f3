package blueprint

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/query"
)

var ErrTitleRequired = errors.New("title is required")

// ImageUploader is implemented by *blob.Uploader.
type ImageUploader interface {
	Upload(ctx context.Context, owner model.UserID, img moderation.Image) (*blob.Blob, error)
}

type CreateRequest struct {
	Title       string
	Description string
	Images      []moderation.Image
}

// UpdateRequest carries the submitted fields of an edit. Nil fields were not
// submitted and keep their stored value. Images are appended.
type UpdateRequest struct {
	Title       *string
	Description *string
	Images      []moderation.Image
}

type Server struct {
	log *zap.Logger

	gate       *gate.Gate
	blueprints Store
	blobs      blob.Store
	uploader   ImageUploader
}

func NewServer(log *zap.Logger, g *gate.Gate, blueprints Store, blobs blob.Store, uploader ImageUploader) *Server {
	return &Server{
		log:        log,
		gate:       g,
		blueprints: blueprints,
		blobs:      blobs,
		uploader:   uploader,
	}
}

// Create publishes a blueprint. Content that fails moderation is stored with
// StatusNeedsReview and administrators are notified, unless the blueprint
// policy is reject, in which case a *gate.RejectionError is returned and
// nothing is stored.
func (s *Server) Create(ctx context.Context, owner *account.User, req *CreateRequest) (*Blueprint, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	log := s.log.With(zap.String("owner_id", owner.ID.String()))

	modReq := moderation.NewRequest().
		AddText(title, "Title").
		AddText(req.Description, "Description").
		AddImages(req.Images...)

	decision, err := s.gate.Screen(ctx, gate.ContentTypeBlueprint, modReq)
	if err != nil {
		return nil, err
	}

	id, err := model.GenerateBlueprintID()
	if err != nil {
		return nil, err
	}

	imageIDs, err := s.uploadImages(ctx, owner.ID, req.Images, decision.Verdict)
	if err != nil {
		log.Warn("Failed to upload blueprint images", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	b := &Blueprint{
		ID:          id,
		OwnerID:     owner.ID,
		Title:       title,
		Description: req.Description,
		Status:      statusFor(decision),
		ImageIDs:    imageIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.blueprints.CreateBlueprint(ctx, b); err != nil {
		log.Warn("Failed to create blueprint", zap.Error(err))
		return nil, err
	}

	log.Debug("Created blueprint",
		zap.String("blueprint_id", b.ID.String()),
		zap.String("status", string(b.Status)),
	)

	if decision.Action == gate.ActionReview {
		s.gate.NotifyModerators(ctx, gate.Subject{
			ContentType: gate.ContentTypeBlueprint,
			ID:          b.ID.String(),
			Title:       b.Title,
			Author:      owner,
		}, decision.Verdict)
	}

	return b, nil
}

// Update edits a blueprint owned by the caller. Only the submitted fields
// are moderated. A passing edit leaves the status unchanged.
func (s *Server) Update(ctx context.Context, caller *account.User, id model.BlueprintID, req *UpdateRequest) (*Blueprint, error) {
	existing, err := s.blueprints.GetBlueprint(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != caller.ID && !caller.IsAdmin {
		return nil, account.ErrPermissionDenied
	}

	log := s.log.With(
		zap.String("blueprint_id", id.String()),
		zap.String("caller_id", caller.ID.String()),
	)

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
	modReq.AddImages(req.Images...)

	decision, err := s.gate.Screen(ctx, gate.ContentTypeBlueprint, modReq)
	if err != nil {
		return nil, err
	}

	imageIDs, err := s.uploadImages(ctx, existing.OwnerID, req.Images, decision.Verdict)
	if err != nil {
		log.Warn("Failed to upload blueprint images", zap.Error(err))
		return nil, err
	}
	updated.ImageIDs = append(updated.ImageIDs, imageIDs...)

	if decision.Action == gate.ActionReview {
		updated.Status = StatusNeedsReview
	}
	updated.UpdatedAt = time.Now()

	if err := s.blueprints.UpdateBlueprint(ctx, updated); err != nil {
		log.Warn("Failed to update blueprint", zap.Error(err))
		return nil, err
	}

	if decision.Action == gate.ActionReview {
		// The stored title is reported when the edit did not change it.
		title := existing.Title
		if req.Title != nil {
			title = updated.Title
		}

		author := caller
		if existing.OwnerID != caller.ID {
			author = nil
		}

		s.gate.NotifyModerators(ctx, gate.Subject{
			ContentType: gate.ContentTypeBlueprint,
			ID:          id.String(),
			Title:       title,
			Author:      author,
		}, decision.Verdict)
	}

	return updated, nil
}

// Get returns a blueprint visible to the caller. Blueprints under review are
// only visible to their owner and administrators. caller may be nil.
func (s *Server) Get(ctx context.Context, caller *account.User, id model.BlueprintID) (*Blueprint, error) {
	b, err := s.blueprints.GetBlueprint(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status == StatusNeedsReview && !canSeeHidden(caller, b) {
		return nil, ErrNotFound
	}
	return b, nil
}

// Approve publishes a blueprint held for review.
func (s *Server) Approve(ctx context.Context, admin *account.User, id model.BlueprintID) error {
	if !admin.IsAdmin {
		return account.ErrPermissionDenied
	}

	if err := s.blueprints.SetStatus(ctx, id, StatusPublished); err != nil {
		return err
	}

	s.log.Debug("Approved blueprint",
		zap.String("blueprint_id", id.String()),
		zap.String("admin_id", admin.ID.String()),
	)
	return nil
}

// ListForReview returns blueprints held for review, oldest first by default.
func (s *Server) ListForReview(ctx context.Context, admin *account.User, opts ...query.Option) ([]*Blueprint, error) {
	if !admin.IsAdmin {
		return nil, account.ErrPermissionDenied
	}
	return s.blueprints.ListByStatus(ctx, StatusNeedsReview, opts...)
}

// uploadImages stores images in order. Only the first image is submitted for
// moderation, so a flagged image verdict always refers to it.
func (s *Server) uploadImages(ctx context.Context, owner model.UserID, images []moderation.Image, verdict *moderation.Verdict) ([]model.BlobID, error) {
	flagFirst := verdict != nil && len(verdict.FlaggedImages) > 0

	var ids []model.BlobID
	for _, img := range images {
		if img == nil {
			continue
		}

		b, err := s.uploader.Upload(ctx, owner, img)
		if err != nil {
			return nil, err
		}

		if flagFirst && len(ids) == 0 {
			if err := s.blobs.SetFlagged(ctx, b.ID, true); err != nil {
				return nil, err
			}
		}

		ids = append(ids, b.ID)
	}
	return ids, nil
}

func statusFor(decision *gate.Decision) Status {
	if decision.Action == gate.ActionReview {
		return StatusNeedsReview
	}
	return StatusPublished
}

func canSeeHidden(caller *account.User, b *Blueprint) bool {
	if caller == nil {
		return false
	}
	return caller.IsAdmin || caller.ID == b.OwnerID
}
