package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/repository"
	"github.com/adsloty/adsloty/internal/schedule"
	"github.com/adsloty/adsloty/internal/validation"
)

// Schedule handles GET /v1/writer/schedule.  It returns the writer's
// upcoming weeks with their resolved states so the dashboard calendar
// can show booked, blocked and open weeks side by side.
func (h *WriterHandler) Schedule(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	weeks := queryInt(c, "weeks", 12)
	if weeks < 1 || weeks > 52 {
		weeks = 12
	}

	// The writer sees the immediate weeks too, lead time only gates
	// sponsors.
	start := schedule.WeekStart(time.Now().UTC())
	until := start.AddDate(0, 0, (weeks-1)*7)
	facts, err := h.Bookings.WeekFacts(c.Request().Context(), w.ID, w.SlotsPerWeek, start, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
	}
	slots := schedule.Resolve(schedule.GenerateSlots(start, 1, weeks, w.PriceCents), facts)
	return c.JSON(http.StatusOK, echo.Map{
		"slots":          slotsToResp(slots),
		"slots_per_week": w.SlotsPerWeek,
	})
}

type blackoutReq struct {
	Date   string  `json:"date"` // any day of the week to block, YYYY-MM-DD
	Reason *string `json:"reason"`
}

// AddBlackout handles POST /v1/writer/blackouts.  The supplied date is
// normalized to its week start; blocking an already blocked week returns
// 409.
func (h *WriterHandler) AddBlackout(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	var req blackoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.Reason != nil {
		r := validation.SanitizeText(strings.TrimSpace(*req.Reason))
		req.Reason = &r
	}

	b := model.BlackoutDate{WriterID: w.ID, BlockedDate: date, Reason: req.Reason}
	if err := h.Blackouts.Create(c.Request().Context(), &b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "week already blocked"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create blackout failed"})
	}
	return c.JSON(http.StatusCreated, blackoutResp(b))
}

// RemoveBlackout handles DELETE /v1/writer/blackouts/:id.
func (h *WriterHandler) RemoveBlackout(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid blackout id"})
	}
	if err := h.Blackouts.Delete(c.Request().Context(), id, w.ID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "blackout not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete blackout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBlackouts handles GET /v1/writer/blackouts.
func (h *WriterHandler) ListBlackouts(c echo.Context) error {
	w, err := h.profile(c)
	if err != nil {
		return err
	}
	blocks, err := h.Blackouts.ListByWriter(c.Request().Context(), w.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blackoutResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"blackouts": out})
}

func blackoutResp(b model.BlackoutDate) echo.Map {
	resp := echo.Map{
		"id":   b.ID,
		"date": schedule.DateKey(b.BlockedDate),
	}
	if b.Reason != nil && *b.Reason != "" {
		resp["reason"] = *b.Reason
	}
	return resp
}
