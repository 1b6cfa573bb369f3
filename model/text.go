package model

// Identifiers render as their string form in JSON.

func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id BlobID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *BlobID) UnmarshalText(b []byte) error {
	parsed, err := ParseBlobID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id BlueprintID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *BlueprintID) UnmarshalText(b []byte) error {
	parsed, err := ParseBlueprintID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id CollectionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CollectionID) UnmarshalText(b []byte) error {
	parsed, err := ParseCollectionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id CommentID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CommentID) UnmarshalText(b []byte) error {
	parsed, err := ParseCommentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
