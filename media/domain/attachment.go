package domain

import (
	"context"
	"time"
)

// AltTextMetaKey is the attachment meta key under which alt text is stored.
const AltTextMetaKey = "_wp_attachment_image_alt"

// FullSize is the size variant name of the original upload.
const FullSize = "full"

// Attachment is a media library record. A pass only ever changes Title and AltText.
type Attachment struct {
	ID           int64
	Title        string
	AltText      string
	FilePath     string
	MimeType     string
	SizeVariants []SizeVariant
	CreatedAt    time.Time
}

// SizeVariant is a resized derivative of an attachment, e.g. "thumbnail" or "150x150".
type SizeVariant struct {
	Name     string
	Width    int
	Height   int
	FilePath string
}

// MediaStore lists, reads and writes attachment records.
// Field writes are applied independently; there is no transaction spanning a record.
type MediaStore interface {
	// ListImageAttachmentIDs returns every attachment with an image/* mime type in ascending ID order.
	ListImageAttachmentIDs(ctx context.Context) ([]int64, error)

	GetTitle(ctx context.Context, id int64) (string, error)
	SetTitle(ctx context.Context, id int64, title string) error

	GetAltText(ctx context.Context, id int64) (string, error)
	SetAltText(ctx context.Context, id int64, altText string) error

	GetFilePath(ctx context.Context, id int64) (string, error)

	// GetSizeVariants returns the size names of an attachment in their stored order.
	GetSizeVariants(ctx context.Context, id int64) ([]string, error)
}

// AttachmentRepository is the seeding side of the media store used by the importer and CLI.
type AttachmentRepository interface {
	MediaStore

	CreateAttachment(ctx context.Context, a *Attachment) (int64, error)
	GetAttachment(ctx context.Context, id int64) (*Attachment, error)
	HasFilePath(ctx context.Context, path string) (bool, error)
}
