package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"

	"github.com/gabriel-vasile/mimetype"
)

const (
	maxJSONBody = 1 << 20
	// DefaultMaxUpload is the image size limit used when none is configured.
	DefaultMaxUpload = 5 << 20
)

// DecodeJSON decodes the request body into dst. Any decoding failure is
// reported as a validation error with the "Invalid request body" message.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// Upload is an image received through a multipart form.
type Upload struct {
	Data        []byte
	ContentType string
	Size        int64
}

// ReadImage reads the multipart file in field, accepting only images no
// larger than maxBytes. Upload.ContentType is sniffed from the data.
func ReadImage(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	tooLarge := apperr.Validation(fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20))

	// Leave headroom for the multipart envelope around the file itself.
	limit := maxBytes + 64<<10
	if r.ContentLength > limit {
		return nil, tooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge
		}
		return nil, apperr.Validation("Invalid multipart form")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, apperr.Validation("No file uploaded")
		}
		return nil, apperr.Validation("Invalid multipart form")
	}
	defer file.Close()

	if header.Size > maxBytes {
		return nil, tooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("Only image files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, tooLarge
	}

	// The declared type is client supplied; trust the bytes instead.
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, apperr.Validation("Only image files are allowed")
	}

	return &Upload{Data: data, ContentType: detected.String(), Size: int64(len(data))}, nil
}

// RespondWithBytes writes raw data with the given content type.
func RespondWithBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
