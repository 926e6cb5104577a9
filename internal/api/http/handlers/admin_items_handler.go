package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/api/dto"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/search"
	"github.com/spec-kit/lostfound-service/internal/service"
)

// AdminItemsHandler serves item moderation.
type AdminItemsHandler struct {
	items *service.ItemService
}

// NewAdminItemsHandler constructs handler.
func NewAdminItemsHandler(items *service.ItemService) *AdminItemsHandler {
	return &AdminItemsHandler{items: items}
}

// List GET /api/admin/items. The keyword also matches category.
func (h *AdminItemsHandler) List(c *fiber.Ctx) error {
	return listItems(c, h.items, search.ScopeAdmin)
}

// Create POST /api/admin/items.
func (h *AdminItemsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.items.AdminCreate(c.UserContext(), principal.User.ID, service.AdminItemInput{
		ItemInput:  itemInput(req),
		Status:     req.Status,
		ReportedBy: req.ReportedBy,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ReportResponse{
		Item:    dto.NewItemResponse(res.Item),
		Matches: dto.NewItemList(res.Matches),
	}})
}

// Update PUT /api/admin/items/:id.
func (h *AdminItemsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ItemUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.items.AdminUpdate(c.UserContext(), principal.User.ID, id, itemUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// UpdateStatus PATCH /api/admin/items/:id/status.
func (h *AdminItemsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.transition(c, req.Status)
}

// Approve POST /api/admin/items/:id/approve.
func (h *AdminItemsHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, domain.ItemStatusApproved)
}

// Reject POST /api/admin/items/:id/reject.
func (h *AdminItemsHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, domain.ItemStatusRejected)
}

func (h *AdminItemsHandler) transition(c *fiber.Ctx, status domain.ItemStatus) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.items.UpdateStatus(c.UserContext(), principal.User.ID, id, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Delete DELETE /api/admin/items/:id.
func (h *AdminItemsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.items.Delete(c.UserContext(), principal.User.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
