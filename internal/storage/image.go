// Package storage decodes uploaded images and keeps them in an S3-compatible
// object store.
package storage

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var ErrInvalidImage = errors.New("invalid image")

const maxImageBytes = 10 << 20

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>". The declared type
// must match the sniffed content.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(uri), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}
	declared := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	ext, known := extensions[declared]
	if !known {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 || len(data) > maxImageBytes {
		return nil, ErrInvalidImage
	}

	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, ContentType: sniffed, Ext: ext}, nil
}
