package handlers

import (
	"errors"
	"strconv"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/reason"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReportHandler serves the caller's own reports.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create handles POST /api/reports.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	req, ok := parseSaveReport(c)
	if !ok {
		return badReportRequest(c)
	}

	user := middleware.UserFrom(c)
	if _, err := h.reports.Create(c.UserContext(), user, *req.Date, req.Categories); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Created"})
}

// List handles GET /api/reports/:skip/:number.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	skip, _ := strconv.Atoi(c.Params("skip"))
	limit, _ := strconv.Atoi(c.Params("number"))

	user := middleware.UserFrom(c)
	reports, err := h.reports.List(c.UserContext(), user, skip, limit)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(reports)
}

// Update handles POST /api/reports/:id.
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badReportRequest(c)
	}

	req, ok := parseSaveReport(c)
	if !ok {
		return badReportRequest(c)
	}

	user := middleware.UserFrom(c)
	if err := h.reports.Update(c.UserContext(), user, reportID, *req.Date, req.Categories); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not Found"})
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"message": "Updated"})
}

// Remove handles DELETE /api/reports/:id.
func (h *ReportHandler) Remove(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badReportRequest(c)
	}

	user := middleware.UserFrom(c)
	if err := h.reports.Delete(c.UserContext(), user, reportID); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not Found"})
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

func parseSaveReport(c *fiber.Ctx) (*dto.SaveReportRequest, bool) {
	var req dto.SaveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, false
	}
	if req.Date == nil || req.Categories == nil {
		return nil, false
	}
	return &req, true
}

func badReportRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Reason: reason.BadSyntax, Message: "Bad request",
	})
}
