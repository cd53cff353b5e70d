package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/dto"
	"github.com/BruksfildServices01/interview-scheduler/internal/httperr"
	"github.com/BruksfildServices01/interview-scheduler/internal/httpresp"
	slotuc "github.com/BruksfildServices01/interview-scheduler/internal/usecase/slot"
)

// ======================================================
// HANDLER
// ======================================================

type SlotHandler struct {
	manager *slotuc.Manager
}

func NewSlotHandler(manager *slotuc.Manager) *SlotHandler {
	return &SlotHandler{manager: manager}
}

// ======================================================
// BOOKING
// ======================================================

func (h *SlotHandler) Create(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid JSON body.")
		return
	}

	s, err := h.manager.Book(c.Request.Context(), req.Input())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, s)
}

func (h *SlotHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Body must be {\"slots\": [...]}.")
		return
	}

	saved, err := h.manager.BookMany(c.Request.Context(), req.Inputs())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, httpresp.ListResponse[slot.Slot]{Data: saved, Total: len(saved)})
}

// ======================================================
// QUERIES
// ======================================================

// List serves ?date=, ?start_date=&end_date= or a paged listing.
func (h *SlotHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.Query("date")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	switch {
	case date != "":
		slots, err := h.manager.GetByDate(ctx, date)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		httpresp.List(c, slots)

	case startDate != "" && endDate != "":
		slots, err := h.manager.GetByDateRange(ctx, startDate, endDate)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		httpresp.List(c, slots)

	default:
		limit, ok := queryInt(c, "limit", 50)
		if !ok {
			return
		}
		offset, ok := queryInt(c, "offset", 0)
		if !ok {
			return
		}

		page, err := h.manager.GetPage(ctx, slot.QueryOptions{
			StartDate: startDate,
			EndDate:   endDate,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		httpresp.OK(c, page)
	}
}

func (h *SlotHandler) Get(c *gin.Context) {
	s, err := h.manager.GetOrThrow(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, s)
}

// Overlapping lists stored slots colliding with the given one.
func (h *SlotHandler) Overlapping(c *gin.Context) {
	ctx := c.Request.Context()

	s, err := h.manager.GetOrThrow(ctx, c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	conflicts, err := h.manager.GetConflicts(ctx, s)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, conflicts)
}

func (h *SlotHandler) Chunks(c *gin.Context) {
	duration, ok := queryInt(c, "duration", slot.IntervalMinutes)
	if !ok {
		return
	}

	chunks, err := h.manager.BookableChunks(c.Request.Context(), c.Param("id"), duration)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, chunks)
}

// Conflicts audits one date for stored pairs that overlap.
func (h *SlotHandler) Conflicts(c *gin.Context) {
	conflicts, err := h.manager.FindConflicts(c.Request.Context(), c.Query("date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, conflicts)
}

// ======================================================
// CANCELLATION
// ======================================================

func (h *SlotHandler) Cancel(c *gin.Context) {
	if err := h.manager.CancelOrThrow(c.Request.Context(), c.Param("id")); err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.NoContent(c)
}

func (h *SlotHandler) CancelByDate(c *gin.Context) {
	date, err := slot.ValidateDate(c.Query("date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	n, err := h.manager.CancelByDate(c.Request.Context(), date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, dto.DeletedResponse{Date: date, Deleted: n})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *SlotHandler) Availability(c *gin.Context) {
	ctx := c.Request.Context()

	opts, ok := availabilityOptions(c)
	if !ok {
		return
	}
	date, err := slot.ValidateDate(c.Query("date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	windows, err := h.manager.GetAvailableSlots(ctx, date, opts)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	minutes := 0
	for _, w := range windows {
		minutes += w.DurationMinutes()
	}

	httpresp.OK(c, dto.AvailabilityResponse{
		Date:             date,
		Windows:          windows,
		AvailableMinutes: minutes,
	})
}

// Check answers whether ?date=&start=&end= could be booked right now.
func (h *SlotHandler) Check(c *gin.Context) {
	resp := dto.CheckResponse{
		Date:      c.Query("date"),
		StartTime: c.Query("start"),
		EndTime:   c.Query("end"),
	}

	ok, err := h.manager.IsAvailable(c.Request.Context(), resp.Date, resp.StartTime, resp.EndTime)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	resp.Available = ok
	httpresp.OK(c, resp)
}

func (h *SlotHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	if date := c.Query("date"); date != "" {
		opts, ok := availabilityOptions(c)
		if !ok {
			return
		}
		stats, err := h.manager.StatsForDate(ctx, date, opts)
		if err != nil {
			httperr.FromError(c, err)
			return
		}
		httpresp.OK(c, stats)
		return
	}

	stats, err := h.manager.DailyStats(ctx, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, stats)
}

// ------------------------------------------------------
// Query helpers
// ------------------------------------------------------

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_"+name, name+" must be an integer.")
		return 0, false
	}
	return n, true
}

func availabilityOptions(c *gin.Context) (slot.AvailabilityOptions, bool) {
	var opts slot.AvailabilityOptions
	var ok bool

	if opts.StartHour, ok = queryInt(c, "start_hour", 0); !ok {
		return opts, false
	}
	if opts.EndHour, ok = queryInt(c, "end_hour", 24); !ok {
		return opts, false
	}
	if opts.MinDurationIntervals, ok = queryInt(c, "min_intervals", 1); !ok {
		return opts, false
	}
	return opts, true
}
