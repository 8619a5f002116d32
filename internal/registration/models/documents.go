package models

import (
	"fmt"
	"strings"

	dErrors "enroll/pkg/domain-errors"
)

// Side names one face of the identity document.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// ParseSide validates a side received at a trust boundary.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(s)) {
	case SideFront:
		return SideFront, nil
	case SideBack:
		return SideBack, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown document side %q", s))
	}
}

// MaxImageBytes is the largest accepted document image (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

var acceptedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// Image is a validated document image. Data is the raw file content; any
// transport encoding is applied at the backend boundary.
type Image struct {
	MimeType string
	Size     int64
	Data     []byte
}

// ValidateImage enforces the accepted types and the size ceiling regardless
// of content.
func ValidateImage(mimeType string, size int64) error {
	if _, ok := acceptedImageTypes[strings.ToLower(strings.TrimSpace(mimeType))]; !ok {
		return dErrors.New(dErrors.CodeUnsupportedMediaType, "only JPG or PNG images are allowed")
	}
	if size > MaxImageBytes {
		return dErrors.New(dErrors.CodePayloadTooLarge, "image must not exceed 5MB")
	}
	return nil
}

// DocumentCapture holds the two sides of the identity document.
type DocumentCapture struct {
	Front *Image
	Back  *Image
}

// Attach validates and stores an image for side, returning the stored image.
// A rejected image leaves the side untouched.
func (d *DocumentCapture) Attach(side Side, mimeType string, size int64, data []byte) (*Image, error) {
	if err := ValidateImage(mimeType, size); err != nil {
		return nil, err
	}
	img := &Image{MimeType: strings.ToLower(mimeType), Size: size, Data: data}
	switch side {
	case SideFront:
		d.Front = img
	case SideBack:
		d.Back = img
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown document side %q", side))
	}
	return img, nil
}

// Remove clears side. Removing an empty side is a no-op.
func (d *DocumentCapture) Remove(side Side) {
	switch side {
	case SideFront:
		d.Front = nil
	case SideBack:
		d.Back = nil
	}
}

// Get returns the image stored for side, or nil.
func (d *DocumentCapture) Get(side Side) *Image {
	switch side {
	case SideFront:
		return d.Front
	case SideBack:
		return d.Back
	}
	return nil
}

// BothPresent reports whether both sides hold an image.
func (d *DocumentCapture) BothPresent() bool {
	return d.Front != nil && d.Back != nil
}

// Clear drops both sides.
func (d *DocumentCapture) Clear() {
	d.Front = nil
	d.Back = nil
}
