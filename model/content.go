package model

import (
	"fmt"

	"github.com/google/uuid"
)

// BlueprintID identifies a shared blueprint.
type BlueprintID uuid.UUID

// CollectionID identifies a collection of blueprints.
type CollectionID uuid.UUID

// CommentID identifies a comment left on a blueprint.
type CommentID uuid.UUID

func GenerateBlueprintID() (BlueprintID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return BlueprintID{}, err
	}

	return BlueprintID(id), nil
}

func MustGenerateBlueprintID() BlueprintID {
	id, err := GenerateBlueprintID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate blueprint id: %v", err))
	}

	return id
}

func ParseBlueprintID(s string) (BlueprintID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BlueprintID{}, err
	}
	return BlueprintID(id), nil
}

func (id BlueprintID) String() string {
	return uuid.UUID(id).String()
}

func (id BlueprintID) Bytes() []byte {
	return id[:]
}

func BlueprintIDFromBytes(b []byte) (BlueprintID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return BlueprintID{}, err
	}
	return BlueprintID(id), nil
}

func GenerateCollectionID() (CollectionID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return CollectionID{}, err
	}

	return CollectionID(id), nil
}

func MustGenerateCollectionID() CollectionID {
	id, err := GenerateCollectionID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate collection id: %v", err))
	}

	return id
}

func ParseCollectionID(s string) (CollectionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CollectionID{}, err
	}
	return CollectionID(id), nil
}

func (id CollectionID) String() string {
	return uuid.UUID(id).String()
}

func (id CollectionID) Bytes() []byte {
	return id[:]
}

func CollectionIDFromBytes(b []byte) (CollectionID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return CollectionID{}, err
	}
	return CollectionID(id), nil
}

func GenerateCommentID() (CommentID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return CommentID{}, err
	}

	return CommentID(id), nil
}

func MustGenerateCommentID() CommentID {
	id, err := GenerateCommentID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate comment id: %v", err))
	}

	return id
}

func ParseCommentID(s string) (CommentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CommentID{}, err
	}
	return CommentID(id), nil
}

func (id CommentID) String() string {
	return uuid.UUID(id).String()
}

func (id CommentID) Bytes() []byte {
	return id[:]
}

func CommentIDFromBytes(b []byte) (CommentID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return CommentID{}, err
	}
	return CommentID(id), nil
}
