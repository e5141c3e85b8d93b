package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/reason"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ImageHandler serves report image upload, retrieval and deletion.
type ImageHandler struct {
	images *services.ImageService
}

func NewImageHandler(images *services.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

type imageMetadata struct {
	ReportID    string `json:"reportid"`
	Description string `json:"description"`
}

// Create handles PUT /api/images: a multipart body with exactly one file
// and a metadata field naming the target report.
func (h *ImageHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Reason: reason.NoImageFound, Message: "No image found",
		})
	}

	files := form.File["image"]
	for field, headers := range form.File {
		if field != "image" {
			files = append(files, headers...)
		}
	}
	if len(files) != 1 {
		code := reason.NoImageFound
		if len(files) > 1 {
			code = reason.TooManyFiles
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Reason: code, Message: "No image found",
		})
	}

	var meta imageMetadata
	values := form.Value["metadata"]
	if len(values) > 0 {
		_ = json.Unmarshal([]byte(values[0]), &meta)
	}
	reportID, err := uuid.Parse(meta.ReportID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Reason: reason.MissingReportID, Message: "No report ID",
		})
	}

	file, err := files[0].Open()
	if err != nil {
		return fiber.ErrInternalServerError
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	user := middleware.UserFrom(c)
	contentType := files[0].Header.Get(fiber.HeaderContentType)
	img, err := h.images.Upload(c.UserContext(), user, reportID, data, contentType, meta.Description)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
				Status: "failed", Reason: reason.ReportNotFound, Message: "Report not found",
			})
		case errors.Is(err, services.ErrUnsupportedImageType), errors.Is(err, services.ErrImageTooLarge):
			return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
				Status: "failed", Reason: reason.BadSyntax, Message: err.Error(),
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(dto.StatusResponse{Status: "ok", ID: img.ID.String()})
}

// Retrieve handles GET /api/images/:id. An optional width query downscales
// the served image.
func (h *ImageHandler) Retrieve(c *fiber.Ctx) error {
	imageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Reason: reason.BadID, Message: "Bad Request",
		})
	}

	user := middleware.UserFrom(c)
	data, contentType, err := h.images.Get(c.UserContext(), user, imageID, c.QueryInt("width"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.StatusResponse{
				Status: "failed", Message: "Not found",
			})
		case errors.Is(err, services.ErrNotAuthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.StatusResponse{
				Status: "failed", Message: "Unauthorized",
			})
		}
		return fiber.ErrInternalServerError
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// Remove handles DELETE /api/images/:id. Owner only.
func (h *ImageHandler) Remove(c *fiber.Ctx) error {
	imageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Reason: reason.BadID, Message: "Bad Request",
		})
	}

	user := middleware.UserFrom(c)
	if err := h.images.Delete(c.UserContext(), user, imageID); err != nil {
		switch {
		case errors.Is(err, services.ErrImageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.StatusResponse{
				Status: "failed", Message: "Not found",
			})
		case errors.Is(err, services.ErrNotAuthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.StatusResponse{
				Status: "failed", Message: "Unauthorized",
			})
		}
		return fiber.ErrInternalServerError
	}

	return c.JSON(dto.StatusResponse{Status: "ok"})
}
