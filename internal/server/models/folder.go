package models

import "time"

// BackendType selects where a folder's files are stored.
type BackendType string

const (
	BackendLocal BackendType = "local"
	BackendS3    BackendType = "s3"
)

// Valid reports whether t is a known backend.
func (t BackendType) Valid() bool {
	return t == BackendLocal || t == BackendS3
}

// DefaultUploadFormTTL is the lifetime of a large-file upload form, seconds.
const DefaultUploadFormTTL = 600

// Folder is a namespace of static files.
type Folder struct {
	ID          string
	Name        string
	Description string
	Type        BackendType
	// IsPrivate puts the folder's objects under the private key namespace.
	// Only meaningful for S3 folders; fixed once the folder has files.
	IsPrivate         bool
	AllowLargeUploads bool
	UploadFormTTL     int
	CreatedAt         time.Time
}

// UploadFormExpiry returns the upload form lifetime.
func (f *Folder) UploadFormExpiry() time.Duration {
	return time.Duration(f.UploadFormTTL) * time.Second
}
