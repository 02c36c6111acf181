// Package models defines the static folder and file records persisted in
// the database, plus the values the storage layer hands back.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/staticstore/internal/common"
)

// File is a named asset inside a Folder. Its bytes live wherever the
// folder's backend puts them; the record itself never holds content.
type File struct {
	ID       string
	FolderID string
	// Folder is loaded alongside the file; backends need its name and policy.
	Folder *Folder
	Name   string
	// IsLargeFile marks content uploaded directly from a browser to the
	// object store. Writes through the service are skipped for such files.
	IsLargeFile bool
	CreatedAt   time.Time
}

// StorageKey returns the object key of the file's bytes.
func (f *File) StorageKey() string {
	return StorageKey(f.Folder, f.Name)
}

// StorageKey derives the object key: "_private/<folder>/<file>" for private
// folders, "<folder>/<file>" otherwise. Names are joined as given.
func StorageKey(folder *Folder, fileName string) string {
	parts := make([]string, 0, 3)
	if folder.IsPrivate {
		parts = append(parts, common.PrivateNamespace)
	}
	parts = append(parts, folder.Name, fileName)
	return strings.Join(parts, "/")
}

// FileBinary is the outcome of reading a file. Data is nil when there is no
// content to return; Warning carries a user-facing notice when one applies.
type FileBinary struct {
	Data    []byte
	Warning string
}

// UploadForm is a presigned browser POST: the form must be sent to URL with
// Fields as form values and the file as the last part.
type UploadForm struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}
