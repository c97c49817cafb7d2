package httputil_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="avatar"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	require.NoError(t, httputil.DecodeJSON(req, &dst))
	assert.Equal(t, "a@b.co", dst.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	err := httputil.DecodeJSON(req, &dst)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "Invalid request body", err.Error())
}

func TestReadImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")

	t.Run("accepts image", func(t *testing.T) {
		req := multipartRequest(t, "profileImage", "image/png", png)
		upload, err := httputil.ReadImage(httptest.NewRecorder(), req, "profileImage", 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "image/png", upload.ContentType)
		assert.Equal(t, int64(len(png)), upload.Size)
		assert.Equal(t, png, upload.Data)
	})

	t.Run("rejects non image", func(t *testing.T) {
		req := multipartRequest(t, "profileImage", "application/pdf", []byte("%PDF"))
		_, err := httputil.ReadImage(httptest.NewRecorder(), req, "profileImage", 1<<20)
		require.Error(t, err)
		assert.Equal(t, "Only image files are allowed", err.Error())
	})

	t.Run("rejects disguised file", func(t *testing.T) {
		req := multipartRequest(t, "profileImage", "image/png", []byte("#!/bin/sh\necho hi\n"))
		_, err := httputil.ReadImage(httptest.NewRecorder(), req, "profileImage", 1<<20)
		require.Error(t, err)
		assert.Equal(t, "Only image files are allowed", err.Error())
	})

	t.Run("content type comes from the data", func(t *testing.T) {
		gif := []byte("GIF89a\x01\x00\x01\x00")
		req := multipartRequest(t, "profileImage", "image/png", gif)
		upload, err := httputil.ReadImage(httptest.NewRecorder(), req, "profileImage", 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "image/gif", upload.ContentType)
	})

	t.Run("missing field", func(t *testing.T) {
		req := multipartRequest(t, "other", "image/png", png)
		_, err := httputil.ReadImage(httptest.NewRecorder(), req, "profileImage", 1<<20)
		require.Error(t, err)
		assert.Equal(t, "No file uploaded", err.Error())
	})

	t.Run("too large", func(t *testing.T) {
		req := multipartRequest(t, "profileImage", "image/png", bytes.Repeat([]byte("a"), 2<<20))
		_, err := httputil.ReadImage(httptest.NewRecorder(), req, "profileImage", 1<<20)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
		assert.Contains(t, err.Error(), "File too large")
	})
}
