package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

// fileURL is the public URL the API serves a stored object from.
func fileURL(key string) string {
	return "/api/files/" + key
}

// requireBlobs answers 503 when no bucket is configured.
func (h *Handler) requireBlobs(c *gin.Context) bool {
	if h.blobs == nil {
		apiError(c, http.StatusServiceUnavailable, "file storage is not configured")
		return false
	}
	return true
}

// storeUpload saves the multipart "file" field under prefix and returns its key.
// On failure it has already written the error response.
func (h *Handler) storeUpload(c *gin.Context, prefix string) (string, bool) {
	userID := c.GetString("user_id")

	header, err := c.FormFile("file")
	if err != nil {
		apiError(c, http.StatusBadRequest, "file is required")
		return "", false
	}
	if header.Size > maxUploadBytes {
		apiError(c, http.StatusBadRequest, "file must be 10 MB or smaller")
		return "", false
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	if !strings.HasPrefix(contentType, "image/") {
		apiError(c, http.StatusBadRequest, "file must be an image")
		return "", false
	}

	f, err := header.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, "unreadable upload")
		return "", false
	}
	defer f.Close()

	key := objectKey(prefix, userID, header.Filename, contentType)
	if err := h.blobs.Put(c.Request.Context(), key, contentType, f, header.Size); err != nil {
		log.Printf("[storeUpload] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to store file")
		return "", false
	}
	return key, true
}

/* ─── Progress photos ─────────────────────────────────────────────────── */

// getProgressPhotos lists the user's progress photos, oldest first.
// GET /api/progress-photos.
func (h *Handler) getProgressPhotos(c *gin.Context) {
	userID := c.GetString("user_id")

	photos, err := queryMany[progressPhoto](h.db, c.Request.Context(),
		`SELECT * FROM progress_photos
		 WHERE user_id = @userID
		 ORDER BY logged_at ASC
		 LIMIT 100`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress photos")
		return
	}
	for i := range photos {
		photos[i].URL = fileURL(photos[i].FileKey)
	}

	c.JSON(http.StatusOK, photos)
}

// uploadProgressPhoto stores a photo dated today.
// POST /api/progress-photos (multipart, field "file").
func (h *Handler) uploadProgressPhoto(c *gin.Context) {
	if !h.requireBlobs(c) {
		return
	}
	userID := c.GetString("user_id")

	key, ok := h.storeUpload(c, "progress-photos")
	if !ok {
		return
	}

	photo, err := queryOne[progressPhoto](h.db, c.Request.Context(),
		`INSERT INTO progress_photos (id, user_id, file_key, date)
		 VALUES (@id, @userID, @fileKey, @date)
		 RETURNING *`,
		pgx.NamedArgs{"id": uuid.NewString(), "userID": userID, "fileKey": key, "date": h.today()})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save progress photo")
		return
	}
	photo.URL = fileURL(photo.FileKey)
	recordLogWrite("progress_photo")

	c.JSON(http.StatusCreated, photo)
}

// deleteProgressPhoto removes the photo row and its stored object.
// DELETE /api/progress-photos/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteProgressPhoto(c *gin.Context) {
	if !h.requireBlobs(c) {
		return
	}
	userID := c.GetString("user_id")
	id := c.Param("id")
	ctx := c.Request.Context()

	photo, err := queryOne[progressPhoto](h.db, ctx,
		"DELETE FROM progress_photos WHERE id = @id AND user_id = @userID RETURNING *",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "Photo not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to delete progress photo")
		}
		return
	}

	// The row is gone either way; an orphaned object is only logged.
	if err := h.blobs.Delete(ctx, photo.FileKey); err != nil {
		log.Printf("[deleteProgressPhoto] %v", err)
	}

	c.Status(http.StatusNoContent)
}

/* ─── Avatar ──────────────────────────────────────────────────────────── */

// uploadAvatar stores a new avatar and points the user and profile at it.
// POST /api/upload/avatar (multipart, field "file").
func (h *Handler) uploadAvatar(c *gin.Context) {
	if !h.requireBlobs(c) {
		return
	}
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	key, ok := h.storeUpload(c, "avatars")
	if !ok {
		return
	}
	url := fileURL(key)

	tx, err := h.db.Begin(ctx)
	if err != nil {
		log.Printf("[uploadAvatar] begin: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save avatar")
		return
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{"userID": userID, "url": url}
	if _, err := tx.Exec(ctx, "UPDATE users SET avatar_url = @url WHERE id = @userID", args); err != nil {
		log.Printf("[uploadAvatar] user: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save avatar")
		return
	}
	if _, err := tx.Exec(ctx, "UPDATE profiles SET avatar_url = @url WHERE user_id = @userID", args); err != nil {
		log.Printf("[uploadAvatar] profile: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save avatar")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		log.Printf("[uploadAvatar] commit: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save avatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{"file_id": key, "url": url})
}

/* ─── Serving ─────────────────────────────────────────────────────────── */

// serveFile streams a stored object.
// GET /api/files/*key (public, so <img> tags can load it without a token).
func (h *Handler) serveFile(c *gin.Context) {
	if !h.requireBlobs(c) {
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		apiError(c, http.StatusNotFound, "File not found")
		return
	}

	obj, err := h.blobs.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, errNotFound) {
			apiError(c, http.StatusNotFound, "File not found")
		} else {
			log.Printf("[serveFile] %v", err)
			apiError(c, http.StatusInternalServerError, "failed to read file")
		}
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body,
		map[string]string{"Cache-Control": "private, max-age=86400"})
}
