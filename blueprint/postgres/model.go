package postgres

import (
	"time"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/model"
)

const (
	blueprintTable = "hub_blueprints"
	imageTable     = "hub_blueprint_images"

	allBlueprintFields = `"id", "ownerId", "title", "description", "status", "createdAt", "updatedAt"`
)

// blueprintModel maps to the hub_blueprints table
type blueprintModel struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"ownerId"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"createdAt"`
	UpdatedAt   time.Time `db:"updatedAt"`
}

// imageModel maps to the hub_blueprint_images table
type imageModel struct {
	BlueprintID string `db:"blueprintId"`
	BlobID      string `db:"blobId"`
	Position    int    `db:"position"`
}

func toBlueprintModel(b *blueprint.Blueprint) *blueprintModel {
	return &blueprintModel{
		ID:          pg.Encode(b.ID.Bytes()),
		OwnerID:     pg.Encode(b.OwnerID.Bytes()),
		Title:       b.Title,
		Description: b.Description,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toImageModels(b *blueprint.Blueprint) []*imageModel {
	models := make([]*imageModel, len(b.ImageIDs))
	for i, id := range b.ImageIDs {
		models[i] = &imageModel{
			BlueprintID: pg.Encode(b.ID.Bytes()),
			BlobID:      pg.Encode(id.Bytes(), pg.Base58),
			Position:    i,
		}
	}
	return models
}

func fromBlueprintModel(m *blueprintModel, images []imageModel) (*blueprint.Blueprint, error) {
	decodedID, err := pg.Decode(m.ID)
	if err != nil {
		return nil, err
	}
	id, err := model.BlueprintIDFromBytes(decodedID)
	if err != nil {
		return nil, err
	}

	decodedOwner, err := pg.Decode(m.OwnerID)
	if err != nil {
		return nil, err
	}
	owner, err := model.UserIDFromBytes(decodedOwner)
	if err != nil {
		return nil, err
	}

	var imageIDs []model.BlobID
	for _, image := range images {
		decoded, err := pg.Decode(image.BlobID)
		if err != nil {
			return nil, err
		}
		blobID, err := model.BlobIDFromBytes(decoded)
		if err != nil {
			return nil, err
		}
		imageIDs = append(imageIDs, blobID)
	}

	return &blueprint.Blueprint{
		ID:          id,
		OwnerID:     owner,
		Title:       m.Title,
		Description: m.Description,
		Status:      blueprint.Status(m.Status),
		ImageIDs:    imageIDs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}
