package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"

	"salarydash/internal/engine"
	"salarydash/internal/log"
	"salarydash/internal/models"
)

// LoadFunc produces a fresh snapshot. It must not return StateLoading.
type LoadFunc func(ctx context.Context) models.Snapshot

type Handler struct {
	snap   atomic.Pointer[models.Snapshot]
	load   LoadFunc
	reload singleflight.Group
	source string
	logger *log.Logger
}

// NewHandler starts in the loading state; data routes answer 503 until SetData
// or Reload stores a snapshot.
func NewHandler(source string, load LoadFunc, logger *log.Logger) *Handler {
	h := &Handler{load: load, source: source, logger: logger.WithComponent(log.ComponentHTTP)}
	h.snap.Store(&models.Snapshot{State: models.StateLoading, Source: source})
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/years", h.GetYears)
	api.GET("/years/:year/jobs", h.GetYearJobs)
	api.GET("/chart", h.GetChart)
	api.GET("/skipped", h.GetSkipped)
	api.POST("/reload", h.PostReload)

	if !isRemote(h.source) {
		e.File("/salaries.csv", h.source)
	}
}

// SetData publishes a snapshot. A failed snapshot never replaces ready data.
func (h *Handler) SetData(s models.Snapshot) {
	for {
		cur := h.snap.Load()
		if s.State == models.StateFailed && cur.State == models.StateReady {
			return
		}
		if h.snap.CompareAndSwap(cur, &s) {
			return
		}
	}
}

func (h *Handler) Snapshot() models.Snapshot {
	return *h.snap.Load()
}

// Reload runs the load function once for all concurrent callers.
func (h *Handler) Reload(ctx context.Context) models.Snapshot {
	v, _, _ := h.reload.Do("load", func() (interface{}, error) {
		s := h.load(ctx)
		h.SetData(s)
		return s, nil
	})
	return v.(models.Snapshot)
}

// --- HELPERS ---

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func statusOf(s models.Snapshot) models.Status {
	st := models.Status{
		State:       s.State,
		Source:      s.Source,
		DurationMs:  s.Duration.Milliseconds(),
		Years:       len(s.Aggregation.Years),
		ValidRows:   s.Aggregation.ValidRows,
		SkippedRows: s.Aggregation.SkippedCount,
	}
	if s.Err != nil {
		st.Error = s.Err.Error()
	}
	if !s.LoadedAt.IsZero() {
		st.LoadedAt = s.LoadedAt.UTC().Format(time.RFC3339)
	}
	return st
}

// ready returns the current snapshot or a 503 while loading or after a failure.
func (h *Handler) ready() (*models.Snapshot, error) {
	s := h.snap.Load()
	switch s.State {
	case models.StateLoading:
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "data is loading")
	case models.StateFailed:
		msg := "data failed to load"
		if s.Err != nil {
			msg += ": " + s.Err.Error()
		}
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, msg)
	}
	return s, nil
}

func sortParams(c echo.Context) (engine.SortState, error) {
	key, err := engine.ParseSortKey(c.QueryParam("sort"))
	if err != nil {
		return engine.SortState{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dir, err := engine.ParseDirection(c.QueryParam("dir"))
	if err != nil {
		return engine.SortState{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return engine.SortState{Key: key, Direction: dir}, nil
}

// --- HANDLERS ---

func (h *Handler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, statusOf(h.Snapshot()))
}

// year table, sorted by ?sort= and ?dir= (default work_year asc)
func (h *Handler) GetYears(c echo.Context) error {
	s, err := h.ready()
	if err != nil {
		return err
	}
	sortBy, err := sortParams(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": engine.Sort(s.Aggregation.Years, sortBy.Key, sortBy.Direction),
		"sort": sortBy,
	})
}

// job titles of one year
func (h *Handler) GetYearJobs(c echo.Context) error {
	s, err := h.ready()
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}

	sel, ok := engine.Select(s.Aggregation.Years, year)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no data for year "+strconv.Itoa(year))
	}
	return c.JSON(http.StatusOK, sel)
}

// line chart series, in the same order as the year table
func (h *Handler) GetChart(c echo.Context) error {
	s, err := h.ready()
	if err != nil {
		return err
	}
	sortBy, err := sortParams(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.Chart(engine.Sort(s.Aggregation.Years, sortBy.Key, sortBy.Direction)))
}

func (h *Handler) GetSkipped(c echo.Context) error {
	s, err := h.ready()
	if err != nil {
		return err
	}
	skipped := s.Aggregation.Skipped
	if skipped == nil {
		skipped = []models.SkippedRow{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  skipped,
		"total": s.Aggregation.SkippedCount,
	})
}

func (h *Handler) PostReload(c echo.Context) error {
	s := h.Reload(context.WithoutCancel(c.Request().Context()))
	if s.State == models.StateFailed {
		h.logger.Warn("Reload failed", log.FieldSource, s.Source, log.FieldError, s.Err)
		return c.JSON(http.StatusBadGateway, statusOf(s))
	}
	return c.JSON(http.StatusOK, statusOf(s))
}
