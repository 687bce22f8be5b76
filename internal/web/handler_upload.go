package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/phonegallery/internal/photostore"
	"github.com/vbonduro/phonegallery/internal/service"
)

const (
	maxUploadSize = 5 << 20 // 5 MB
	// maxUploadRequestSize leaves room for the multipart framing around the file.
	maxUploadRequestSize = maxUploadSize + 1<<20
	uploadDir            = "phones"
)

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

type uploadResponse struct {
	Image   string `json:"image"`
	DataURL string `json:"dataUrl"`
}

// handleUpload stores an uploaded image and returns both ways a phone can
// reference it: the hosted path and the equivalent data URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	if r.ContentLength > maxUploadRequestSize {
		s.writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequestSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Image file required")
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	if header.Size > maxUploadSize {
		s.writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read file")
		s.logger.Error("read upload failed", "error", err)
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Unsupported image format")
		return
	}

	key, err := s.images.Save(r.Context(), uploadDir, mimeType, bytes.NewReader(imageData))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to store image")
		s.logger.Error("save upload failed", "error", err)
		return
	}
	s.logger.Info("image uploaded", "key", key, "mime", mimeType, "bytes", len(imageData))

	s.writeJSON(w, http.StatusCreated, uploadResponse{
		Image:   photostore.PathFromKey(key),
		DataURL: service.EncodeDataURL(mimeType, imageData),
	})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		http.NotFound(w, r)
		return
	}

	key := r.PathValue("key")
	reader, mimeType, err := s.images.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Warn("get image failed", "key", key, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "key", key, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
