package server

import (
	"strings"

	"reclaimit/internal/models"
	"reclaimit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type submitClaimRequest struct {
	ItemID   uint                 `json:"item_id"`
	ItemKind string               `json:"item_kind"`
	Answers  []models.ClaimAnswer `json:"answers"`
}

type reviewClaimRequest struct {
	Notes string `json:"notes"`
}

// SubmitClaim files a formal ownership claim against an item
func (s *Server) SubmitClaim(c *fiber.Ctx) error {
	var req submitClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	claim, err := s.claimService.Submit(c.Context(), service.SubmitClaimInput{
		ItemID:     req.ItemID,
		ItemKind:   models.ItemKind(req.ItemKind),
		ClaimantID: currentUserID(c),
		Answers:    req.Answers,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Claim submitted successfully. An administrator will review it.",
		"claim":   claim,
	})
}

// GetMyClaims returns the caller's claims, newest first
func (s *Server) GetMyClaims(c *fiber.Ctx) error {
	claims, err := s.claimService.GetForUser(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(claims),
		"claims":  claims,
	})
}

// ListClaims returns all claims, optionally filtered by ?status
func (s *Server) ListClaims(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	var (
		claims []*models.Claim
		err    error
	)
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		claims, err = s.claimService.GetByStatus(c.Context(), models.ClaimStatus(raw), limit, offset)
	} else {
		claims, err = s.claimService.GetAll(c.Context(), limit, offset)
	}
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(claims),
		"claims":  claims,
	})
}

// GetClaim returns one claim together with the item it targets
func (s *Server) GetClaim(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	detail, err := s.claimService.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"claim":   detail.Claim,
		"item":    detail.Item,
	})
}

// ApproveClaim approves a pending claim and hands the item to the claimant
func (s *Server) ApproveClaim(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	var req reviewClaimRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	claim, err := s.claimService.Approve(c.Context(), service.ReviewClaimInput{
		ClaimID: id,
		AdminID: currentUserID(c),
		Notes:   strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Claim approved",
		"claim":   claim,
	})
}

// DeclineClaim declines a pending claim, leaving the item untouched
func (s *Server) DeclineClaim(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	var req reviewClaimRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	claim, err := s.claimService.Decline(c.Context(), service.ReviewClaimInput{
		ClaimID: id,
		AdminID: currentUserID(c),
		Notes:   strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Claim declined",
		"claim":   claim,
	})
}

// DeleteClaim removes a claim record. Deleting an approved claim releases
// the item back to the active pool.
func (s *Server) DeleteClaim(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.claimService.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Claim deleted",
	})
}

// ClaimFoundItem is the direct claim flow on found items: one freeform
// answer, no admin review.
func (s *Server) ClaimFoundItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	var req struct {
		Answer string `json:"answer"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	item, err := s.claimService.ClaimFound(c.Context(), service.ClaimFoundInput{
		ItemID: id,
		UserID: currentUserID(c),
		Answer: strings.TrimSpace(req.Answer),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item claimed successfully. Contact the finder to arrange pickup.",
		"item":    item,
	})
}

// ResolveFoundItem lets the finder mark a claimed item as handed over
func (s *Server) ResolveFoundItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	item, err := s.claimService.ResolveFound(c.Context(), service.ResolveFoundInput{
		ItemID:  id,
		OwnerID: currentUserID(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item marked as resolved",
		"item":    item,
	})
}
