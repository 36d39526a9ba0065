package server

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"reclaimit/internal/classifier"
	"reclaimit/internal/models"
	"reclaimit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// itemDateLayout accepts plain dates from the report form.
const itemDateLayout = "2006-01-02"

type itemRequest struct {
	ItemName            string                      `json:"item_name" form:"item_name"`
	Description         string                      `json:"description" form:"description"`
	Category            string                      `json:"category" form:"category"`
	Place               string                      `json:"place" form:"place"`
	Date                string                      `json:"date" form:"date"`
	ContactInfo         string                      `json:"contact_info" form:"contact_info"`
	PickupLocation      string                      `json:"pickup_location" form:"pickup_location"`
	ValidationQuestions []models.ValidationQuestion `json:"validation_questions"`
	// Multipart forms carry questions as a JSON-encoded string field.
	ValidationQuestionsJSON string `json:"-" form:"validation_questions"`
}

func (r *itemRequest) questions() ([]models.ValidationQuestion, error) {
	if len(r.ValidationQuestions) > 0 {
		return r.ValidationQuestions, nil
	}
	if strings.TrimSpace(r.ValidationQuestionsJSON) == "" {
		return nil, nil
	}
	var qs []models.ValidationQuestion
	if err := json.Unmarshal([]byte(r.ValidationQuestionsJSON), &qs); err != nil {
		return nil, models.NewValidationError("Invalid validation_questions payload")
	}
	return qs, nil
}

func (r *itemRequest) parsedDate() (time.Time, error) {
	raw := strings.TrimSpace(r.Date)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(itemDateLayout, raw)
	if err != nil {
		return time.Time{}, models.NewValidationError("Date must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

// saveUploadedImage stores an optional multipart "image" file and returns its
// public URL. An absent file is not an error.
func (s *Server) saveUploadedImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return "", models.NewValidationError("Unable to read uploaded image")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return "", models.NewValidationError("Unable to read uploaded image")
	}
	return s.imageStore.Save(fileHeader.Filename, content)
}

// CreateItem reports a new lost or found item. Accepts JSON bodies and
// multipart forms with an optional image file.
func (s *Server) CreateItem(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	questions, err := req.questions()
	if err != nil {
		return models.RespondWithError(c, err)
	}
	date, err := req.parsedDate()
	if err != nil {
		return models.RespondWithError(c, err)
	}

	imageURL, err := s.saveUploadedImage(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	item, err := s.itemService.Create(c.Context(), service.CreateItemInput{
		Kind:                kind,
		UserID:              currentUserID(c),
		ItemName:            strings.TrimSpace(req.ItemName),
		Description:         strings.TrimSpace(req.Description),
		Category:            strings.TrimSpace(req.Category),
		Place:               strings.TrimSpace(req.Place),
		Date:                date,
		ImageURL:            imageURL,
		ContactInfo:         strings.TrimSpace(req.ContactInfo),
		PickupLocation:      strings.TrimSpace(req.PickupLocation),
		ValidationQuestions: questions,
	})
	if err != nil {
		// Creation failed after the upload succeeded; drop the orphan file.
		if imageURL != "" {
			_ = s.imageStore.Remove(imageURL)
		}
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Item reported successfully",
		"item":    item,
	})
}

// ListItems returns visible items of a kind with optional filters
func (s *Server) ListItems(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	in := service.ListItemsInput{
		Kind:     kind,
		Category: c.Query("category"),
		Status:   models.ItemStatus(c.Query("status")),
		Location: c.Query("location"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse(itemDateLayout, raw)
		if err != nil {
			return models.RespondWithError(c, models.NewValidationError("date_from must be YYYY-MM-DD"))
		}
		in.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse(itemDateLayout, raw)
		if err != nil {
			return models.RespondWithError(c, models.NewValidationError("date_to must be YYYY-MM-DD"))
		}
		in.DateTo = &t
	}

	items, err := s.itemService.List(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// SearchItems performs a keyword search over active items of a kind
func (s *Server) SearchItems(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	limit, offset := parsePagination(c)

	items, err := s.itemService.Search(c.Context(), kind, c.Query("keyword"), limit, offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// GetItem returns a single item by kind and ID
func (s *Server) GetItem(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	item, err := s.itemService.GetByID(c.Context(), kind, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// GetMyItems returns the caller's own reports, hidden ones included
func (s *Server) GetMyItems(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	items, err := s.itemService.GetUserItems(c.Context(), kind, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"items":   items,
	})
}

// UpdateItem lets the reporter edit their posting
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateItemInput{
		Kind:           kind,
		ItemID:         id,
		UserID:         currentUserID(c),
		ItemName:       strings.TrimSpace(req.ItemName),
		Description:    strings.TrimSpace(req.Description),
		Category:       strings.TrimSpace(req.Category),
		Place:          strings.TrimSpace(req.Place),
		ContactInfo:    strings.TrimSpace(req.ContactInfo),
		PickupLocation: strings.TrimSpace(req.PickupLocation),
	}
	if strings.TrimSpace(req.Date) != "" {
		date, err := req.parsedDate()
		if err != nil {
			return models.RespondWithError(c, err)
		}
		in.Date = &date
	}

	item, err := s.itemService.Update(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item updated successfully",
		"item":    item,
	})
}

// DeleteItem removes an item. Reporters may delete their own postings.
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.itemService.Delete(c.Context(), kind, id, currentUserID(c), isAdmin(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Item deleted successfully",
	})
}

// GetCategories lists the fixed category set in priority order
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"categories": classifier.AllCategories(),
	})
}

// GetCategoryStats returns per-category counts across both kinds
func (s *Server) GetCategoryStats(c *fiber.Ctx) error {
	stats, err := s.itemService.CategoryStats(c.Context())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// SuggestCategory scores ?name and ?description against the keyword tables
func (s *Server) SuggestCategory(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	description := strings.TrimSpace(c.Query("description"))
	if name == "" && description == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Provide a name or description to classify"))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"suggestion": classifier.Suggest(name, description),
	})
}
