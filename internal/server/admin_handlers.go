package server

import (
	"reclaimit/internal/middleware"
	"reclaimit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetDashboardStats returns aggregate counts for the admin dashboard
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.adminService.GetDashboardStats(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// ListAllItems returns lost and found items in one moderation listing
func (s *Server) ListAllItems(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	items, err := s.adminService.ListAllItems(c.Context(), c.Query("search"), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// AdminDeleteItem removes any item regardless of ownership
func (s *Server) AdminDeleteItem(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.adminService.DeleteItem(c.Context(), kind, id); err != nil {
		return models.RespondWithError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "item removed by admin",
		"item_kind", string(kind), "item_id", id)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item deleted successfully",
	})
}

// ListUsers returns registered accounts with an optional ?search filter
func (s *Server) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	users, err := s.adminService.ListUsers(c.Context(), c.Query("search"), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// GetUserDetail returns one account with its reporting and claim activity
func (s *Server) GetUserDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	detail, err := s.adminService.GetUserDetail(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    detail.User,
		"activity": fiber.Map{
			"lost_reported":  detail.LostReported,
			"found_reported": detail.FoundReported,
			"pending_claims": detail.PendingClaims,
		},
	})
}

// ToggleUserStatus flips an account between active and blocked
func (s *Server) ToggleUserStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.adminService.ToggleUserStatus(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user status toggled",
		"target_user_id", user.ID, "status", string(user.Status))

	message := "User unblocked successfully"
	if user.IsBlocked() {
		message = "User blocked successfully"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"user":    user,
	})
}
