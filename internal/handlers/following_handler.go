package handlers

import (
	"errors"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// FollowingHandler serves the /api/following resource: who the caller
// follows.
type FollowingHandler struct {
	relationships *services.RelationshipService
}

func NewFollowingHandler(relationships *services.RelationshipService) *FollowingHandler {
	return &FollowingHandler{relationships: relationships}
}

// Create handles POST /api/following/:username.
func (h *FollowingHandler) Create(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)

	followee, err := h.relationships.AddFollowing(c.UserContext(), user, c.Params("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.StatusResponse{
				Status: "failed", Message: "Not found",
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(dto.StatusResponse{
		Status:  "success",
		Message: "Friend added",
		ID:      followee.ID.String(),
	})
}

// List handles GET /api/following.
func (h *FollowingHandler) List(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)

	entries, err := h.relationships.FollowingList(c.UserContext(), user)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(entries)
}

// Remove handles DELETE /api/following/:id.
func (h *FollowingHandler) Remove(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)

	followeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Message: "Invalid ID format",
		})
	}

	if err := h.relationships.RemoveFollowing(c.UserContext(), user, followeeID); err != nil {
		if errors.Is(err, services.ErrNotFollowing) || errors.Is(err, services.ErrUnknownFollowee) {
			return c.Status(fiber.StatusNotFound).JSON(dto.StatusResponse{
				Status: "failed", Message: "Not found",
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(dto.StatusResponse{Status: "success"})
}
