package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/staticstore/internal/logging"
	"github.com/dmitrijs2005/staticstore/internal/server/models"
	"github.com/dmitrijs2005/staticstore/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds request bodies accepted through the API.
const maxBodySize = 64 << 20

type FolderService interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	Update(ctx context.Context, id string, upd services.FolderUpdate) (*models.Folder, error)
	Get(ctx context.Context, id string) (*models.Folder, error)
	List(ctx context.Context) ([]*models.Folder, error)
}

type FileService interface {
	Create(ctx context.Context, folderID, name string, data []byte) (*models.File, error)
	Get(ctx context.Context, id string) (*services.FileView, error)
	List(ctx context.Context, folderID string) ([]*services.FileView, error)
	GetFileBinary(ctx context.Context, userID, id string) (*models.FileBinary, error)
	SetFileBinary(ctx context.Context, id string, data []byte) error
	Static(ctx context.Context, folderName, name string) (*services.StaticContent, error)
}

type UploadService interface {
	StartLargeUpload(ctx context.Context, fileID string) (string, error)
}

type Handler struct {
	folders FolderService
	files   FileService
	uploads UploadService
	logger  logging.Logger
}

func NewHandler(folders FolderService, files FileService, uploads UploadService, l logging.Logger) *Handler {
	return &Handler{folders: folders, files: files, uploads: uploads, logger: l}
}

type folderRequest struct {
	Name              *string             `json:"name"`
	Description       *string             `json:"description"`
	Type              *models.BackendType `json:"type"`
	IsPrivate         *bool               `json:"is_private"`
	AllowLargeUploads *bool               `json:"allow_large_uploads"`
	UploadFormTTL     *int                `json:"upload_form_ttl"`
}

type folderResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Type              models.BackendType `json:"type"`
	IsPrivate         bool               `json:"is_private"`
	AllowLargeUploads bool               `json:"allow_large_uploads"`
	UploadFormTTL     int                `json:"upload_form_ttl"`
	CreatedAt         time.Time          `json:"created_at"`
}

func toFolderResponse(f *models.Folder) folderResponse {
	return folderResponse{
		ID:                f.ID,
		Name:              f.Name,
		Description:       f.Description,
		Type:              f.Type,
		IsPrivate:         f.IsPrivate,
		AllowLargeUploads: f.AllowLargeUploads,
		UploadFormTTL:     f.UploadFormTTL,
		CreatedAt:         f.CreatedAt,
	}
}

type createFileRequest struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name"`
	// Content is base64 in JSON.
	Content []byte `json:"content"`
}

type fileResponse struct {
	ID          string    `json:"id"`
	FolderID    string    `json:"folder_id"`
	Folder      string    `json:"folder"`
	Name        string    `json:"name"`
	IsLargeFile bool      `json:"is_large_file"`
	StorageKey  string    `json:"storage_key,omitempty"`
	URL         string    `json:"url,omitempty"`
	Path        string    `json:"path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	sendError(w, status, code, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == nil {
		sendError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	folder := &models.Folder{Name: *req.Name}
	if req.Description != nil {
		folder.Description = *req.Description
	}
	if req.Type != nil {
		folder.Type = *req.Type
	}
	if req.IsPrivate != nil {
		folder.IsPrivate = *req.IsPrivate
	}
	if req.AllowLargeUploads != nil {
		folder.AllowLargeUploads = *req.AllowLargeUploads
	}
	if req.UploadFormTTL != nil {
		folder.UploadFormTTL = *req.UploadFormTTL
	}

	folder, err := h.folders.Create(r.Context(), folder)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, toFolderResponse(folder))
}

func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	list, err := h.folders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]folderResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFolderResponse(f))
	}
	sendJSON(w, http.StatusOK, out)
}

func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toFolderResponse(folder))
}

func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Type != nil {
		sendError(w, http.StatusBadRequest, "invalid_request", "folder type cannot change")
		return
	}

	folder, err := h.folders.Update(r.Context(), chi.URLParam(r, "id"), services.FolderUpdate{
		Name:              req.Name,
		Description:       req.Description,
		IsPrivate:         req.IsPrivate,
		AllowLargeUploads: req.AllowLargeUploads,
		UploadFormTTL:     req.UploadFormTTL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toFolderResponse(folder))
}

func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil || req.FolderID == "" {
		sendError(w, http.StatusBadRequest, "invalid_request", "folder_id and name are required")
		return
	}

	file, err := h.files.Create(r.Context(), req.FolderID, req.Name, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, fileResponse{
		ID:          file.ID,
		FolderID:    file.FolderID,
		Folder:      file.Folder.Name,
		Name:        file.Name,
		IsLargeFile: file.IsLargeFile,
		StorageKey:  file.StorageKey(),
		CreatedAt:   file.CreatedAt,
	})
}

func toFileResponse(v *services.FileView) fileResponse {
	return fileResponse{
		ID:          v.ID,
		FolderID:    v.FolderID,
		Folder:      v.Folder.Name,
		Name:        v.Name,
		IsLargeFile: v.IsLargeFile,
		StorageKey:  v.StorageKey,
		URL:         v.URL,
		Path:        v.Path,
		CreatedAt:   v.CreatedAt,
	}
}

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	v, err := h.files.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toFileResponse(v))
}

func (h *Handler) ListFolderFiles(w http.ResponseWriter, r *http.Request) {
	views, err := h.files.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]fileResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toFileResponse(v))
	}
	sendJSON(w, http.StatusOK, out)
}

// GetFileBinary streams the content. A user-facing notice travels in the
// Warning header with code 199.
func (h *Handler) GetFileBinary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	bin, err := h.files.GetFileBinary(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if bin.Warning != "" {
		w.Header().Set("Warning", fmt.Sprintf("199 - %q", bin.Warning))
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bin.Data)
}

func (h *Handler) SetFileBinary(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		sendError(w, http.StatusBadRequest, "invalid_request", "cannot read body")
		return
	}
	if err := h.files.SetFileBinary(r.Context(), chi.URLParam(r, "id"), data); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StartLargeUpload(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.uploads.StartLargeUpload(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// StaticFile serves local content directly and redirects to object store URLs.
func (h *Handler) StaticFile(w http.ResponseWriter, r *http.Request) {
	content, err := h.files.Static(r.Context(), chi.URLParam(r, "folder"), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if content.RedirectURL != "" {
		http.Redirect(w, r, content.RedirectURL, http.StatusFound)
		return
	}
	ct := mime.TypeByExtension(path.Ext(content.Name))
	if ct == "" || strings.HasPrefix(ct, "text/html") {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data)
}
