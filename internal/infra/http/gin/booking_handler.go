package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentops/internal/app/commands"
	"rentops/internal/app/dto"
	bookingapp "rentops/internal/app/handlers/booking"
	"rentops/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type extendHoldRequest struct {
	Hours int `json:"hours"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var cmd bookingapp.CreateBookingCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	cmd.IdempotencyKeyV = c.GetHeader("Idempotency-Key")
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) List(c *gin.Context) {
	q := bookingapp.ListBookingsQuery{
		PropertyID: strings.TrimSpace(c.Query("property_id")),
		Status:     strings.TrimSpace(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		q.Limit = limit
	}
	result, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	q := bookingapp.GetBookingQuery{BookingID: bookingID(c)}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Update(c *gin.Context) {
	var cmd bookingapp.UpdateBookingCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	cmd.BookingID = bookingID(c)
	dispatchBooking(c, h, cmd)
}

func (h BookingHandler) ConvertHold(c *gin.Context) {
	var req noteRequest
	if !bindOptional(c, &req) {
		return
	}
	dispatchBooking(c, h, bookingapp.ConvertHoldCommand{
		BookingID:       bookingID(c),
		Note:            req.Note,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
}

func (h BookingHandler) CancelHold(c *gin.Context) {
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	dispatchBooking(c, h, bookingapp.CancelHoldCommand{BookingID: bookingID(c), Reason: req.Reason})
}

func (h BookingHandler) ExtendHold(c *gin.Context) {
	var req extendHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dispatchBooking(c, h, bookingapp.ExtendHoldCommand{BookingID: bookingID(c), Hours: req.Hours})
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	dispatchBooking(c, h, bookingapp.CancelBookingCommand{BookingID: bookingID(c), Reason: req.Reason})
}

func (h BookingHandler) Complete(c *gin.Context) {
	var req noteRequest
	if !bindOptional(c, &req) {
		return
	}
	dispatchBooking(c, h, bookingapp.CompleteBookingCommand{BookingID: bookingID(c), Note: req.Note})
}

func (h BookingHandler) BulkCancel(c *gin.Context) {
	var cmd bookingapp.BulkCancelCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	dispatchBulk(c, h, cmd)
}

func (h BookingHandler) BulkComplete(c *gin.Context) {
	var cmd bookingapp.BulkCompleteCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	dispatchBulk(c, h, cmd)
}

func dispatchBooking[C commands.Command](c *gin.Context, h BookingHandler, cmd C) {
	result, err := commands.Dispatch[C, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// dispatchBulk answers 200 even when some items failed; the body carries
// the per-item outcome.
func dispatchBulk[C commands.Command](c *gin.Context, h BookingHandler, cmd C) {
	result, err := commands.Dispatch[C, dto.BulkResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func bookingID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// bindOptional accepts an empty body for actions whose payload is optional.
func bindOptional(c *gin.Context, out any) bool {
	if c.Request.ContentLength <= 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

var _ BookingHTTP = BookingHandler{}
