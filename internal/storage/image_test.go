package storage

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pixelPNG)
}

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI(pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, pixelPNG, img.Data)
}

func TestDecodeDataURIRejects(t *testing.T) {
	for _, uri := range []string{
		"",
		"not a data uri",
		"data:image/png;base64,!!!",
		"data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello")),
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text")),
		"data:image/png," + base64.StdEncoding.EncodeToString(pixelPNG),
	} {
		_, err := DecodeDataURI(uri)
		assert.ErrorIs(t, err, ErrInvalidImage, uri)
	}
}
