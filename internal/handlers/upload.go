package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/apperr"
	"github.com/ukydev/car-showroom/internal/response"
	"github.com/ukydev/car-showroom/internal/storage"
)

// multipartOverhead is slack for form boundaries and headers.
const multipartOverhead = 1 << 20

const msgFileNotFound = "File not found"

// UploadHandler stores images and serves them back under /uploads/.
type UploadHandler struct {
	store storage.ObjectStorage
	now   func() time.Time
}

func NewUploadHandler(store storage.ObjectStorage) *UploadHandler {
	return &UploadHandler{store: store, now: time.Now}
}

// UploadedFile describes one stored image.
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Type         string `json:"type,omitempty"`
}

// FileInfo describes a stored image for the info routes.
type FileInfo struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Index lists the upload routes.
func (h *UploadHandler) Index(w http.ResponseWriter, r *http.Request) error {
	types := strings.Join(storage.Types, "|")
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Upload API is working",
		"endpoints": map[string]string{
			"single":   "POST /api/upload/single?type=" + types,
			"multiple": "POST /api/upload/multiple?type=" + types,
			"delete":   "DELETE /api/upload/:type/:filename",
			"info":     "GET /api/upload/info/:type/:filename",
		},
	})
	return nil
}

// Single stores the "image" form file.
func (h *UploadHandler) Single(w http.ResponseWriter, r *http.Request) error {
	uploadType := storage.NormalizeType(r.URL.Query().Get("type"))
	if err := h.parseForm(w, r, storage.MaxFileSize+multipartOverhead); err != nil {
		return err
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return apperr.Validation("No file uploaded")
	}
	if err := checkFile(files[0]); err != nil {
		return err
	}

	uploaded, err := h.put(r, uploadType, files[0])
	if err != nil {
		return err
	}
	uploaded.Type = uploadType
	response.OK(w, http.StatusOK, "Image uploaded successfully", uploaded)
	return nil
}

// Multiple stores up to storage.MaxFiles "images" form files. Every file is
// checked before any is stored.
func (h *UploadHandler) Multiple(w http.ResponseWriter, r *http.Request) error {
	uploadType := storage.NormalizeType(r.URL.Query().Get("type"))
	if err := h.parseForm(w, r, storage.MaxFiles*storage.MaxFileSize+multipartOverhead); err != nil {
		return err
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		return apperr.Validation("No files uploaded")
	}
	if len(files) > storage.MaxFiles {
		return apperr.Validation(storage.ErrTooManyFiles.Error())
	}
	for _, fh := range files {
		if err := checkFile(fh); err != nil {
			return err
		}
	}

	images := make([]UploadedFile, 0, len(files))
	for _, fh := range files {
		uploaded, err := h.put(r, uploadType, fh)
		if err != nil {
			return err
		}
		images = append(images, uploaded)
	}

	response.JSON(w, http.StatusOK, struct {
		response.Envelope
		Type string `json:"type"`
	}{
		Envelope: response.Envelope{
			Success: true,
			Message: fmt.Sprintf("%d images uploaded successfully", len(images)),
			Data:    images,
		},
		Type: uploadType,
	})
	return nil
}

func (h *UploadHandler) parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(storage.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation(storage.ErrFileTooBig.Error())
		}
		return apperr.Validation("Invalid multipart form")
	}
	return nil
}

func checkFile(fh *multipart.FileHeader) error {
	if !storage.IsImage(fh.Header.Get("Content-Type")) {
		return apperr.Validation(storage.ErrNotImage.Error())
	}
	if fh.Size > storage.MaxFileSize {
		return apperr.Validation(storage.ErrFileTooBig.Error())
	}
	return nil
}

func (h *UploadHandler) put(r *http.Request, uploadType string, fh *multipart.FileHeader) (UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return UploadedFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	filename := storage.NewFilename(uploadType, fh.Filename, fh.Header.Get("Content-Type"), h.now())
	key, err := storage.Key(uploadType, filename)
	if err != nil {
		return UploadedFile{}, err
	}
	if err := h.store.Put(r.Context(), key, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		return UploadedFile{}, fmt.Errorf("store %s: %w", key, err)
	}

	log.WithFields(log.Fields{"key": key, "size": fh.Size}).Debug("image stored")
	return UploadedFile{
		Filename:     filename,
		OriginalName: fh.Filename,
		URL:          storage.URL(key),
		Size:         fh.Size,
	}, nil
}

// fileKey resolves the type and filename route params. Routes without a
// type param use the default type.
func fileKey(r *http.Request) (string, string, error) {
	uploadType := storage.NormalizeType(chi.URLParam(r, "type"))
	filename := chi.URLParam(r, "filename")
	key, err := storage.Key(uploadType, filename)
	if err != nil {
		return "", "", apperr.NotFound(msgFileNotFound)
	}
	return uploadType, key, nil
}

func storageNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msgFileNotFound)
	}
	return err
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	uploadType, key, err := fileKey(r)
	if err != nil {
		return err
	}
	if err := h.store.Delete(r.Context(), key); err != nil {
		return storageNotFound(err)
	}

	if chi.URLParam(r, "type") == "" {
		response.OK(w, http.StatusOK, "Image deleted successfully", nil)
		return nil
	}
	response.OK(w, http.StatusOK, "File deleted successfully", map[string]string{
		"filename": chi.URLParam(r, "filename"),
		"type":     uploadType,
	})
	return nil
}

func (h *UploadHandler) Info(w http.ResponseWriter, r *http.Request) error {
	uploadType, key, err := fileKey(r)
	if err != nil {
		return err
	}
	info, err := h.store.Stat(r.Context(), key)
	if err != nil {
		return storageNotFound(err)
	}
	response.OK(w, http.StatusOK, "", FileInfo{
		Filename:   chi.URLParam(r, "filename"),
		URL:        storage.URL(key),
		Size:       info.Size,
		Type:       uploadType,
		ModifiedAt: info.ModTime,
	})
	return nil
}

// Serve streams a stored object for GET /uploads/*.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) error {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		return apperr.NotFound(msgFileNotFound)
	}
	rc, info, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return apperr.NotFound(msgFileNotFound)
		}
		return storageNotFound(err)
	}
	defer rc.Close()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, key, info.ModTime, rs)
		return nil
	}
	w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	if _, err := io.Copy(w, rc); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to stream upload")
	}
	return nil
}
