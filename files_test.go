package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type memObject struct {
	data        []byte
	contentType string
}

// memBlobs is an in-memory blobStore.
type memBlobs struct {
	objects map[string]memObject
}

func (m *memBlobs) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) (blobObject, error) {
	obj, ok := m.objects[key]
	if !ok {
		return blobObject{}, fmt.Errorf("object %s: %w", key, errNotFound)
	}
	return blobObject{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func setupFilesTest(blobs blobStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{blobs: blobs}
	router := gin.New()
	router.GET("/api/files/*key", h.serveFile)
	return router
}

func TestServeFile(t *testing.T) {
	blobs := &memBlobs{objects: map[string]memObject{
		"progress-photos/user-1/abc.jpg": {data: []byte("jpeg-bytes"), contentType: "image/jpeg"},
	}}
	router := setupFilesTest(blobs)

	req := httptest.NewRequest(http.MethodGet, "/api/files/progress-photos/user-1/abc.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	require.Equal(t, "jpeg-bytes", w.Body.String())
}

func TestServeFile_NotFound(t *testing.T) {
	router := setupFilesTest(&memBlobs{objects: map[string]memObject{}})

	req := httptest.NewRequest(http.MethodGet, "/api/files/avatars/missing.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"File not found"}`, w.Body.String())
}

func TestServeFile_StorageNotConfigured(t *testing.T) {
	router := setupFilesTest(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/files/avatars/a.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestObjectKey(t *testing.T) {
	key := objectKey("progress-photos", "user-1", "me.JPG", "image/jpeg")
	require.True(t, strings.HasPrefix(key, "progress-photos/user-1/"), key)
	require.True(t, strings.HasSuffix(key, ".jpg"), key)

	key = objectKey("avatars", "user-1", "face.webp", "application/x-unknown-type")
	require.True(t, strings.HasSuffix(key, ".webp"), key)

	require.NotEqual(t,
		objectKey("avatars", "user-1", "a.png", "image/png"),
		objectKey("avatars", "user-1", "a.png", "image/png"))
}
