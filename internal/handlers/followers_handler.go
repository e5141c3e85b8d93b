package handlers

import (
	"errors"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// FollowersHandler serves the /api/followers resource: who follows the
// caller, and the approval/block switches on each of them.
type FollowersHandler struct {
	relationships *services.RelationshipService
}

func NewFollowersHandler(relationships *services.RelationshipService) *FollowersHandler {
	return &FollowersHandler{relationships: relationships}
}

// List handles GET /api/followers. Only active followers are returned.
func (h *FollowersHandler) List(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)

	entries, err := h.relationships.FollowersList(c.UserContext(), user)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(entries)
}

// Update handles POST /api/followers/:id with body {approved?, blocked?}.
func (h *FollowersHandler) Update(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)

	followerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Message: "not a user id",
		})
	}

	var req dto.UpdateFollowerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Message: "no data included",
		})
	}

	err = h.relationships.UpdateFollowerStatus(c.UserContext(), user, followerID, req.Approved, req.Blocked)
	if err != nil {
		if errors.Is(err, services.ErrNoStatusFields) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
				Status: "failed", Message: "no data included",
			})
		}
		if errors.Is(err, services.ErrNotAFollower) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
				Status: "failed", Message: "not following user " + followerID.String(),
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(dto.StatusResponse{Status: "success", Message: "follower status updated"})
}
