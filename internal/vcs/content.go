package vcs

import (
	"encoding/base64"
	"path"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/models"
	"golang.org/x/text/encoding/charmap"
)

// DecodeContent decodes the base64 payload of the contents API. The API
// wraps the payload with newlines, which are removed first. Bytes that are
// not valid UTF-8 are read as ISO-8859-1.
func DecodeContent(encoded string) (string, error) {
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(encoded)

	raw, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return "", domainErrors.ErrDecodeContent.WithError(err)
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	latin1, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", domainErrors.ErrDecodeContent.WithError(err)
	}
	return string(latin1), nil
}

// NewFilePayload builds the prompt payload for a fetched file. A content
// that cannot be decoded is kept as its raw encoded text.
func NewFilePayload(filePath string, content models.FileContent) (models.FilePayload, error) {
	payload := models.FilePayload{
		FileName: path.Base(filePath),
		Encoded:  content.Content,
	}

	decoded, err := DecodeContent(content.Content)
	if err != nil {
		payload.Decoded = content.Content
		return payload, err
	}
	payload.Decoded = decoded
	return payload, nil
}
