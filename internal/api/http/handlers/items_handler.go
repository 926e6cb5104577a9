package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/api/dto"
	"github.com/spec-kit/lostfound-service/internal/search"
	"github.com/spec-kit/lostfound-service/internal/service"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// ItemsHandler serves item browsing and reporter endpoints.
type ItemsHandler struct {
	items *service.ItemService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(items *service.ItemService) *ItemsHandler {
	return &ItemsHandler{items: items}
}

func pageResponse(page *service.ItemPage) dto.ItemPageResponse {
	return dto.ItemPageResponse{
		Items:    dto.NewItemList(page.Items),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
}

func listItems(c *fiber.Ctx, items *service.ItemService, scope search.Scope) error {
	filter, err := parseItemFilter(c, scope)
	if err != nil {
		return err
	}
	page, size := parsePage(c)
	result, err := items.List(c.UserContext(), service.ItemQuery{Filter: filter, Page: page, PageSize: size})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pageResponse(result)})
}

// List GET /api/items.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	return listItems(c, h.items, search.ScopePublic)
}

// Search GET /api/items/search?q=.
func (h *ItemsHandler) Search(c *fiber.Ctx) error {
	items, err := h.items.Search(c.UserContext(), c.Query("q"), search.ScopePublic)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemList(items)})
}

// Get GET /api/items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.items.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Matches GET /api/items/:id/matches.
func (h *ItemsHandler) Matches(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	matches, err := h.items.Matches(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemList(matches)})
}

// Report POST /api/items.
func (h *ItemsHandler) Report(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.items.Report(c.UserContext(), principal.User.ID, itemInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ReportResponse{
		Item:    dto.NewItemResponse(res.Item),
		Matches: dto.NewItemList(res.Matches),
	}})
}

// Update PUT /api/items/:id, reporter only.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
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
	item, err := h.items.UpdateAsOwner(c.UserContext(), principal.User.ID, id, itemUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Cancel DELETE /api/items/:id, reporter only.
func (h *ItemsHandler) Cancel(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.items.Cancel(c.UserContext(), principal.User.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Claim POST /api/items/:id/claim.
func (h *ItemsHandler) Claim(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.items.Claim(c.UserContext(), principal.User.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Upload POST /api/items/upload with a multipart "image" field.
func (h *ItemsHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file required", map[string]any{"image": "required"})
	}
	file, err := fh.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	url, err := h.items.UploadImage(c.UserContext(), file, fh.Filename, fh.Header.Get(fiber.HeaderContentType), fh.Size)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{URL: url}})
}

func itemInput(req dto.ItemRequest) service.ItemInput {
	return service.ItemInput{
		Description:  req.Description,
		Location:     req.Location,
		Type:         req.Type,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		ReportedDate: req.ReportedDate,
	}
}

func itemUpdate(req dto.ItemUpdateRequest) service.ItemUpdate {
	return service.ItemUpdate{
		Description: req.Description,
		Location:    req.Location,
		Type:        req.Type,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	}
}
