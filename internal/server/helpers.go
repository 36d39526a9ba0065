package server

import (
	"strconv"

	"reclaimit/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads ?page and ?limit, clamping to sane bounds.
// Returns limit and offset ready for the repository layer.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, (page - 1) * limit
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return uint(id), nil
}

// parseKind reads the :kind path parameter as an item kind.
func parseKind(c *fiber.Ctx) (models.ItemKind, error) {
	kind := models.ItemKind(c.Params("kind"))
	if !kind.Valid() {
		return "", models.NewValidationError("Item kind must be 'lost' or 'found'")
	}
	return kind, nil
}

// currentUserID returns the authenticated user's ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// isAdmin reports whether the authenticated user has the admin role.
func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("userRole").(models.UserRole)
	return role == models.RoleAdmin
}
