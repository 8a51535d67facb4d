package vcs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/models"
)

func TestDecodeContent(t *testing.T) {
	t.Run("decodes base64 wrapped with newlines", func(t *testing.T) {
		decoded, err := DecodeContent("cHVibGljIGNsYXNzIE1h\naW4ge30K\n")
		require.NoError(t, err)
		assert.Equal(t, "public class Main {}\n", decoded)
	})

	t.Run("reads invalid UTF-8 as latin-1", func(t *testing.T) {
		decoded, err := DecodeContent("Y2Hn")
		require.NoError(t, err)
		assert.Equal(t, "caç", decoded)
	})

	t.Run("fails on invalid base64", func(t *testing.T) {
		_, err := DecodeContent("not base64!!")
		assert.True(t, errors.Is(err, domainErrors.ErrDecodeContent))
	})
}

func TestNewFilePayload(t *testing.T) {
	t.Run("uses the base name and keeps both forms", func(t *testing.T) {
		payload, err := NewFilePayload("src/app/Main.java", models.FileContent{Content: "Y2xhc3MgTWFpbiB7fQ=="})
		require.NoError(t, err)

		assert.Equal(t, "Main.java", payload.FileName)
		assert.Equal(t, "class Main {}", payload.Decoded)
		assert.Equal(t, "Y2xhc3MgTWFpbiB7fQ==", payload.Encoded)
	})

	t.Run("falls back to the raw text when decoding fails", func(t *testing.T) {
		payload, err := NewFilePayload("Broken.java", models.FileContent{Content: "%%%"})
		assert.Error(t, err)

		assert.Equal(t, "%%%", payload.Decoded)
		assert.Equal(t, "%%%", payload.Encoded)
	})
}
