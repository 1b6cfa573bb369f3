package pg

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/mr-tron/base58"
)

// EncodeType is the short prefix stored in front of every encoded id column.
type EncodeType string

const (
	Base64            EncodeType = "b64"
	Base58            EncodeType = "b58"
	Hex               EncodeType = "hex"
	DefaultEncodeType            = Base64
)

var ErrInvalidEncoding = errors.New("invalid encoded value format")

// Encode encodes value in the requested format (Base64 when omitted) and
// prefixes it with the encoding type, e.g. "b58:3yZe7d".
func Encode(value []byte, encodeType ...EncodeType) string {
	encType := DefaultEncodeType
	if len(encodeType) > 0 {
		encType = encodeType[0]
	}

	var encodedValue string
	switch encType {
	case Base58:
		encodedValue = base58.Encode(value)
	case Hex:
		encodedValue = hex.EncodeToString(value)
	default:
		encType = Base64
		encodedValue = base64.StdEncoding.EncodeToString(value)
	}

	return string(encType) + ":" + encodedValue
}

// Decode reverses Encode, picking the decoder from the value's prefix.
func Decode(value string) ([]byte, error) {
	prefix, encodedValue, ok := strings.Cut(value, ":")
	if !ok {
		return nil, ErrInvalidEncoding
	}

	switch EncodeType(prefix) {
	case Base58:
		return base58.Decode(encodedValue)
	case Hex:
		return hex.DecodeString(encodedValue)
	case Base64:
		return base64.StdEncoding.DecodeString(encodedValue)
	default:
		return nil, errors.New("unsupported encoding type")
	}
}
