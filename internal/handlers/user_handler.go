package handlers

import (
	"errors"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/reason"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the /api/users resource. POST doubles as registration
// (anonymous) and profile update (bearer token present), which is why the
// route cannot sit behind the JWT middleware.
type UserHandler struct {
	authService   *services.AuthService
	reportService *services.ReportService
}

func NewUserHandler(authService *services.AuthService, reportService *services.ReportService) *UserHandler {
	return &UserHandler{authService: authService, reportService: reportService}
}

func (h *UserHandler) Save(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return h.register(c)
	}
	return h.update(c)
}

func (h *UserHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Reason: reason.BadSyntax, Message: "Bad request",
		})
	}

	if _, err := h.authService.Register(&req); err != nil {
		return h.saveError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Created"})
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	user, err := h.authService.UserFromBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SaveUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Reason: reason.BadSyntax, Message: "Bad request",
		})
	}
	if req.Username == "" && req.Password == "" && req.AutoApprove == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Reason: reason.BadSyntax, Message: "Bad request",
		})
	}

	if err := h.authService.UpdateProfile(user, &req); err != nil {
		return h.saveError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Updated"})
}

// Profile serves GET /api/users: the caller's own profile plus their report
// count.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)

	count, err := h.reportService.CountByOwner(c.UserContext(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.ProfileResponse{
		ID:          user.ID.String(),
		Username:    user.Username,
		AutoApprove: user.AutoApprove,
		ReportCount: count,
	})
}

func (h *UserHandler) saveError(c *fiber.Ctx, err error) error {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Reason: vErr.Reason, Message: vErr.Message,
		})
	}
	if errors.Is(err, services.ErrUsernameTaken) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Reason: reason.UsernameNotUnique, Message: "Username not unique",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
