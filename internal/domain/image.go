package domain

import (
	"context"
	"io"
	"strings"
)

// Upload is one received image file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore persists uploaded images and serves them under a public path.
type ImageStore interface {
	// Save stores the upload and returns the stored file name.
	Save(ctx context.Context, upload Upload) (string, error)
	Remove(ctx context.Context, name string) error
}

// ImagePath is the public path prefix stored images are served under.
const ImagePath = "/images/"

// ImageURL builds the public URL of a stored image.
func ImageURL(baseURL, name string) string {
	return baseURL + ImagePath + name
}

// ImageFileName extracts the stored file name from an image URL, or "" when
// the URL does not point at a stored image.
func ImageFileName(imageURL string) string {
	_, name, ok := strings.Cut(imageURL, ImagePath)
	if !ok {
		return ""
	}
	return name
}
