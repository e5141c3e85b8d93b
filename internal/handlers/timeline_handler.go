package handlers

import (
	"net/url"
	"strconv"
	"time"

	"github.com/checkinhq/checkin-backend/internal/dto"
	"github.com/checkinhq/checkin-backend/internal/middleware"
	"github.com/checkinhq/checkin-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// TimelineHandler serves the aggregated feed. Both endpoints accept an
// optional JSON array body: a shortlist of user IDs narrowing the sources.
type TimelineHandler struct {
	timeline *services.TimelineService
}

func NewTimelineHandler(timeline *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{timeline: timeline}
}

// ByTime handles POST /api/timeline/from/:timefrom/to/:timeto.
func (h *TimelineHandler) ByTime(c *fiber.Ctx) error {
	from, errFrom := parseTimeParam(c.Params("timefrom"))
	to, errTo := parseTimeParam(c.Params("timeto"))
	if errFrom != nil || errTo != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
			Status: "failed", Message: "invalid time",
		})
	}

	user := middleware.UserFrom(c)
	reports, err := h.timeline.ByTime(c.UserContext(), user, from, to, shortListFrom(c))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(reports)
}

// ByPage handles POST /api/timeline/:time/:number. A time of "0" means now.
func (h *TimelineHandler) ByPage(c *fiber.Ctx) error {
	var before time.Time
	if raw := c.Params("time"); raw != "0" {
		var err error
		before, err = parseTimeParam(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{
				Status: "failed", Message: "invalid time",
			})
		}
	}

	pageSize, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		pageSize = 0 // service falls back to the default
	}

	user := middleware.UserFrom(c)
	reports, err := h.timeline.ByPage(c.UserContext(), user, before, pageSize, shortListFrom(c))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(reports)
}

// shortListFrom reads the optional shortlist body. A missing, empty or
// malformed body means "no shortlist".
func shortListFrom(c *fiber.Ctx) []string {
	if len(c.Body()) == 0 {
		return nil
	}
	var shortList []string
	if err := c.BodyParser(&shortList); err != nil {
		return nil
	}
	if len(shortList) == 0 {
		return nil
	}
	return shortList
}

// parseTimeParam accepts RFC3339 timestamps (URL-escaped) or unix
// milliseconds.
func parseTimeParam(raw string) (time.Time, error) {
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		unescaped = raw
	}

	if ms, err := strconv.ParseInt(unescaped, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Parse(time.RFC3339, unescaped)
}
