package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentops/internal/app/commands"
	"rentops/internal/app/queries"
	domainbooking "rentops/internal/domain/booking"
)

func statusFor(err error) int {
	var conflict *domainbooking.ConflictError
	switch {
	case errors.Is(err, domainbooking.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainbooking.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domainbooking.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict),
		errors.Is(err, domainbooking.ErrIllegalTransition),
		errors.Is(err, domainbooking.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	var conflict *domainbooking.ConflictError
	if errors.As(err, &conflict) {
		body["conflict"] = gin.H{
			"booking_id": string(conflict.Conflict.BookingID),
			"guest_name": conflict.Conflict.GuestName,
			"check_in":   conflict.Conflict.Range.CheckIn.Format("2006-01-02"),
			"check_out":  conflict.Conflict.Range.CheckOut.Format("2006-01-02"),
		}
	}
	if status >= http.StatusInternalServerError {
		// internals stay in the log
		body["error"] = http.StatusText(status)
	}
	if logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if p, ok := currentPrincipal(c); ok {
			fields = append(fields, "principal_id", p.ID)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
