package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"strings" // strings provides trimming helpers
	"time"    // time parses date range filters

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/adsloty/adsloty/internal/model"
	"github.com/adsloty/adsloty/internal/repository"
)

// errHandled signals that a helper already wrote the HTTP response.
// Echo skips its error handler when the response is committed, so the
// sentinel only stops the calling handler from writing a second body.
var errHandled = errors.New("response already written")

// fail writes a JSON error body and returns a non-nil error so helpers
// that load shared state can make their callers bail out with a plain
// return.
func fail(c echo.Context, status int, msg string) error {
	if err := c.JSON(status, echo.Map{"error": msg}); err != nil {
		return err
	}
	return errHandled
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID parses a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// queryInt parses an optional integer query parameter, returning def
// when absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// listOptions reads the shared booking-list query parameters: status,
// from/until (YYYY-MM-DD, applied to the slot date), sort and
// limit/offset.  Invalid values fall back to defaults rather than
// erroring, so dashboards never break on a stale link.
func listOptions(c echo.Context) repository.ListOptions {
	opts := repository.ListOptions{
		Sort:   strings.TrimSpace(c.QueryParam("sort")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if s := model.BookingStatus(strings.TrimSpace(c.QueryParam("status"))); s != "" {
		switch s {
		case model.StatusPendingPayment, model.StatusPaid, model.StatusApproved,
			model.StatusPublished, model.StatusRejected, model.StatusCancelled, model.StatusRefunded:
			opts.Status = s
		}
	}
	if t, err := time.Parse("2006-01-02", c.QueryParam("from")); err == nil {
		opts.From = &t
	}
	if t, err := time.Parse("2006-01-02", c.QueryParam("until")); err == nil {
		opts.Until = &t
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

// queryUint32 parses an optional unsigned query parameter.
func queryUint32(c echo.Context, name string) uint32 {
	s := c.QueryParam(name)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
