package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/auth"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/search"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// splitList accepts both repeated and comma-separated query values.
func splitList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid date", map[string]any{"date": value})
}

// parseItemFilter reads q, status, type, category, location, reportedBy,
// from and to.
func parseItemFilter(c *fiber.Ctx, scope search.Scope) (search.Filter, error) {
	filter := search.Filter{
		Keyword:    c.Query("q"),
		Scope:      scope,
		Categories: splitList(c, "category"),
		Locations:  splitList(c, "location"),
	}
	for _, s := range splitList(c, "status") {
		status := domain.ItemStatus(strings.ToLower(s))
		if !status.Valid() {
			return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": s})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, t := range splitList(c, "type") {
		typ := domain.ItemType(t)
		if !typ.Valid() {
			return filter, apperrors.NewValidationError("type must be Lost or Found", map[string]any{"type": t})
		}
		filter.Types = append(filter.Types, typ)
	}
	if raw := c.Query("reportedBy"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid reportedBy", map[string]any{"reportedBy": raw})
		}
		filter.ReportedBy = &id
	}

	var err error
	if filter.From, err = parseDate(c.Query("from")); err != nil {
		return filter, err
	}
	if filter.To, err = parseDate(c.Query("to")); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePage(c *fiber.Ctx) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = c.QueryInt("pageSize", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
