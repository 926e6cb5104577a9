package handlers

import (
	"errors"
	"mime"
	"path"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/storage"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// UploadsHandler serves images kept by the in-memory image store.
type UploadsHandler struct {
	images *storage.MemoryStore
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(images *storage.MemoryStore) *UploadsHandler {
	return &UploadsHandler{images: images}
}

// Get GET /api/uploads/*.
func (h *UploadsHandler) Get(c *fiber.Ctx) error {
	key := path.Clean(c.Params("*"))
	img, err := h.images.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewNotFound("image", map[string]any{"key": key})
		}
		return apperrors.NewInternalError(err)
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(img.Data)
}
