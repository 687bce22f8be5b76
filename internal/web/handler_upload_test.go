package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/phonegallery/internal/photostore/local"
)

func TestAllowedImageMIME(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantMIME     string
		wantDetected bool
	}{
		{
			name:         "JPEG",
			data:         []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
			wantMIME:     "image/jpeg",
			wantDetected: true,
		},
		{
			name:         "PNG",
			data:         []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
			wantMIME:     "image/png",
			wantDetected: true,
		},
		{
			name:         "GIF",
			data:         []byte("GIF89a"),
			wantMIME:     "image/gif",
			wantDetected: true,
		},
		{
			name:         "WebP",
			data:         append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 10)...),
			wantMIME:     "image/webp",
			wantDetected: true,
		},
		{
			name:         "RIFF but not WebP",
			data:         append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 10)...),
			wantDetected: false,
		},
		{
			name:         "PDF disguised as image",
			data:         []byte("%PDF-1.4 malicious content"),
			wantDetected: false,
		},
		{
			name:         "empty",
			data:         []byte{},
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, gotDetected := allowedImageMIME(tt.data)
			assert.Equal(t, tt.wantDetected, gotDetected)
			assert.Equal(t, tt.wantMIME, gotMIME)
		})
	}
}

func newUploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleUploadWritesToImageStore(t *testing.T) {
	images, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	s := NewServer(nil, images, slog.Default())

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, newUploadRequest(t, "image", png))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^/phones/\d+\.png$`, resp.Image)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgoAAA==", resp.DataURL)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images"+resp.Image, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestHandleUploadTooLarge(t *testing.T) {
	images, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	s := NewServer(nil, images, slog.Default())

	data := make([]byte, maxUploadSize+1)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, newUploadRequest(t, "image", data))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleUploadFarTooLarge(t *testing.T) {
	images, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	s := NewServer(nil, images, slog.Default())

	data := make([]byte, 7<<20)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, newUploadRequest(t, "image", data))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// Without a declared length the body limit still applies.
	req := newUploadRequest(t, "image", data)
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleUploadWithoutImageStore(t *testing.T) {
	s := NewServer(nil, nil, slog.Default())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, newUploadRequest(t, "image", []byte("GIF89a")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/phones/x.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
