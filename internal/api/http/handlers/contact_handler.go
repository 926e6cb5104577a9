package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/api/dto"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/service"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// ContactHandler serves contact messages.
type ContactHandler struct {
	contact *service.ContactService
}

// NewContactHandler constructs handler.
func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Send POST /api/contact/send.
func (h *ContactHandler) Send(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ContactRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.contact.Send(c.UserContext(), principal.User.ID, req.ItemID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(msg)})
}

// Inbox GET /api/contact/messages.
func (h *ContactHandler) Inbox(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	list, err := h.contact.Inbox(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageList(list)})
}

// AdminList GET /api/admin/messages?status=.
func (h *ContactHandler) AdminList(c *fiber.Ctx) error {
	var status *domain.MessageStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.MessageStatus(raw)
		if s != domain.MessageStatusSent && s != domain.MessageStatusArchived {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
		}
		status = &s
	}
	list, err := h.contact.List(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMessageList(list)})
}

// Archive POST /api/admin/messages/:id/archive.
func (h *ContactHandler) Archive(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contact.Archive(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete DELETE /api/admin/messages/:id.
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.contact.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
