package postgres

import (
	"time"

	pg "github.com/blueprint-hub/hub-server/database/postgres"

	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/model"
)

const (
	collectionTable = "hub_collections"
	memberTable     = "hub_collection_blueprints"

	allCollectionFields = `"id", "ownerId", "title", "description", "status", "createdAt", "updatedAt"`
)

type collectionModel struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"ownerId"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"createdAt"`
	UpdatedAt   time.Time `db:"updatedAt"`
}

type memberModel struct {
	CollectionID string `db:"collectionId"`
	BlueprintID  string `db:"blueprintId"`
	Position     int    `db:"position"`
}

func toCollectionModel(c *collection.Collection) *collectionModel {
	return &collectionModel{
		ID:          pg.Encode(c.ID.Bytes()),
		OwnerID:     pg.Encode(c.OwnerID.Bytes()),
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toMemberModels(c *collection.Collection) []*memberModel {
	members := make([]*memberModel, len(c.BlueprintIDs))
	for i, id := range c.BlueprintIDs {
		members[i] = &memberModel{
			CollectionID: pg.Encode(c.ID.Bytes()),
			BlueprintID:  pg.Encode(id.Bytes()),
			Position:     i,
		}
	}
	return members
}

func fromCollectionModel(m *collectionModel, members []memberModel) (*collection.Collection, error) {
	decodedID, err := pg.Decode(m.ID)
	if err != nil {
		return nil, err
	}
	id, err := model.CollectionIDFromBytes(decodedID)
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

	var blueprintIDs []model.BlueprintID
	for _, member := range members {
		decoded, err := pg.Decode(member.BlueprintID)
		if err != nil {
			return nil, err
		}
		blueprintID, err := model.BlueprintIDFromBytes(decoded)
		if err != nil {
			return nil, err
		}
		blueprintIDs = append(blueprintIDs, blueprintID)
	}

	return &collection.Collection{
		ID:           id,
		OwnerID:      owner,
		Title:        m.Title,
		Description:  m.Description,
		Status:       collection.Status(m.Status),
		BlueprintIDs: blueprintIDs,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
