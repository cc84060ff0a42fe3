package api

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/middleware"
	"github.com/bilgisen/cyberpress/internal/models"
	"github.com/bilgisen/cyberpress/internal/scheduler"
	"github.com/bilgisen/cyberpress/internal/storage"
	"github.com/bilgisen/cyberpress/internal/store"
)

// Version is reported by the health endpoint.
var Version = "1.0.0"

type HistorySource interface {
	FetchHistory(ctx context.Context, id string, days int) ([]models.PricePoint, error)
}

type ToolLister interface {
	FetchTools(ctx context.Context, category models.ToolCategory, limit int) ([]models.AITool, error)
}

type Jobs interface {
	Status() []scheduler.JobStatus
	Trigger(ctx context.Context, name string) error
}

type LocalState interface {
	Stats() (storage.Stats, error)
	ClearAll() error
}

type Handlers struct {
	store   *store.Store
	history HistorySource
	tools   ToolLister
	jobs    Jobs
	local   LocalState
	log     zerolog.Logger
}

func NewHandlers(st *store.Store, history HistorySource, tools ToolLister, jobs Jobs, local LocalState, log zerolog.Logger) *Handlers {
	return &Handlers{store: st, history: history, tools: tools, jobs: jobs, local: local, log: log}
}

type sectionView struct {
	Section models.Section `json:"section"`
	store.SectionStatus
	Data any `json:"data"`
}

// saveRequest either names an entity shown in a section by ID and section
// alone, or carries the display fields of the item when type is set.
type saveRequest struct {
	ID       string           `json:"id" validate:"required"`
	Type     models.SavedType `json:"type" validate:"omitempty,oneof=news tool crypto creative"`
	Title    string           `json:"title" validate:"required_with=Type"`
	Summary  string           `json:"summary"`
	Source   string           `json:"source"`
	URL      string           `json:"url" validate:"omitempty,url"`
	ImageURL string           `json:"imageUrl" validate:"omitempty,url"`
	Section  string           `json:"section"`
}

type readRequest struct {
	Status models.ReadStatus `json:"status" validate:"required,oneof=read unread"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// GetState handles GET /state
func (h *Handlers) GetState(c *fiber.Ctx) error {
	return c.JSON(h.store.Snapshot())
}

// GetSection handles GET /sections/:section
func (h *Handlers) GetSection(c *fiber.Ctx) error {
	view, err := h.section(models.Section(strings.Clone(c.Params("section"))))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *Handlers) section(sec models.Section) (sectionView, error) {
	data, status, err := h.store.Section(sec)
	if errors.Is(err, store.ErrUnknownSection) {
		return sectionView{}, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return sectionView{}, err
	}
	return sectionView{Section: sec, SectionStatus: status, Data: data}, nil
}

// RefreshAll handles POST /refresh. Section failures are reported in the
// returned statuses, not as an HTTP error.
func (h *Handlers) RefreshAll(c *fiber.Ctx) error {
	if err := h.store.RefreshAll(c.UserContext()); err != nil {
		h.log.Warn().Err(err).Msg("Refresh finished with failures")
	}
	return c.JSON(fiber.Map{"sections": h.store.Snapshot().Sections})
}

// RefreshSection handles POST /refresh/:section
func (h *Handlers) RefreshSection(c *fiber.Ctx) error {
	sec := models.Section(strings.Clone(c.Params("section")))
	err := h.store.RefreshSection(c.UserContext(), sec)
	if errors.Is(err, store.ErrUnknownSection) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	view, err := h.section(sec)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// ListSaved handles GET /saved
func (h *Handlers) ListSaved(c *fiber.Ctx) error {
	items := h.store.Snapshot().SavedItems
	return c.JSON(fiber.Map{
		"total": len(items),
		"items": items,
	})
}

// GetSaved handles GET /saved/:id
func (h *Handlers) GetSaved(c *fiber.Ctx) error {
	item, ok := h.store.SavedItem(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Saved item not found"})
	}
	return c.JSON(item)
}

// SaveItem handles POST /saved
func (h *Handlers) SaveItem(c *fiber.Ctx) error {
	req := middleware.Validated[saveRequest](c)
	if req.Type == "" {
		return h.saveFromSection(c, models.Section(req.Section), req.ID)
	}

	item := models.SavedItem{
		ID:       req.ID,
		Type:     req.Type,
		Title:    req.Title,
		Summary:  req.Summary,
		Source:   req.Source,
		URL:      req.URL,
		ImageURL: req.ImageURL,
		Section:  req.Section,
	}
	if err := h.store.SaveItem(item); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	saved, _ := h.store.SavedItem(item.ID)
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *Handlers) saveFromSection(c *fiber.Ctx, sec models.Section, id string) error {
	item, err := h.store.SaveFromSection(sec, id)
	switch {
	case errors.Is(err, store.ErrEntityNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// RemoveSaved handles DELETE /saved/:id
func (h *Handlers) RemoveSaved(c *fiber.Ctx) error {
	if !h.store.RemoveSavedItem(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Saved item not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkRead handles PATCH /saved/:id/read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	id := c.Params("id")
	req := middleware.Validated[readRequest](c)
	if !h.store.MarkRead(id, req.Status) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Saved item not found"})
	}
	item, _ := h.store.SavedItem(id)
	return c.JSON(item)
}

// GetPreferences handles GET /preferences
func (h *Handlers) GetPreferences(c *fiber.Ctx) error {
	return c.JSON(h.store.Preferences())
}

// UpdatePreferences handles PUT /preferences
func (h *Handlers) UpdatePreferences(c *fiber.Ctx) error {
	prefs := middleware.Validated[models.UserPreferences](c)
	if err := h.store.UpdatePreferences(*prefs); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.store.Preferences())
}

// ListTools handles GET /tools/:category?limit=N. The listing is read from
// the repository boundary, not from the ai-tools section.
func (h *Handlers) ListTools(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	category := models.ToolCategory(strings.Clone(raw))
	if !slices.Contains(models.ToolCategories(), category) {
		return fiber.NewError(fiber.StatusNotFound, "unknown tool category: "+string(category))
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 50 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 50"})
	}

	list, err := h.tools.FetchTools(c.UserContext(), category, limit)
	if err != nil {
		h.log.Warn().Err(err).Str("category", string(category)).Msg("Serving fallback tool listing")
	}
	return c.JSON(fiber.Map{
		"category": category,
		"tools":    list,
		"fallback": err != nil,
	})
}

// GetCryptoHistory handles GET /crypto/:id/history?days=N
func (h *Handlers) GetCryptoHistory(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days < 1 || days > 365 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days must be between 1 and 365"})
	}

	id := c.Params("id")
	points, err := h.history.FetchHistory(c.UserContext(), id, days)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Int("days", days).Msg("Error getting price history")
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{
		"id":     id,
		"days":   days,
		"points": points,
	})
}

// ListSchedules handles GET /schedules
func (h *Handlers) ListSchedules(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"jobs": h.jobs.Status()})
}

// TriggerSchedule handles POST /schedules/:name/trigger. The job runs to
// completion before the response is sent.
func (h *Handlers) TriggerSchedule(c *fiber.Ctx) error {
	name := c.Params("name")
	start := time.Now()
	err := h.jobs.Trigger(c.UserContext(), name)
	if errors.Is(err, scheduler.ErrUnknownJob) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown job"})
	}

	resp := fiber.Map{
		"job":      name,
		"status":   "ok",
		"duration": time.Since(start).String(),
	}
	if err != nil {
		resp["status"] = "failed"
		resp["error"] = err.Error()
	}
	return c.JSON(resp)
}

// StorageStats handles GET /storage/stats
func (h *Handlers) StorageStats(c *fiber.Ctx) error {
	stats, err := h.local.Stats()
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// ClearStorage handles DELETE /storage
func (h *Handlers) ClearStorage(c *fiber.Ctx) error {
	if err := h.local.ClearAll(); err != nil {
		return err
	}
	h.store.Reload()
	h.log.Info().Str("ip", c.IP()).Msg("Local state cleared")
	return c.SendStatus(fiber.StatusNoContent)
}
