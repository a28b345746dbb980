package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentops/internal/app/commands"
	"rentops/internal/app/dto"
	availabilityapp "rentops/internal/app/handlers/availability"
	"rentops/internal/app/queries"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{
		PropertyID: strings.TrimSpace(c.Param("id")),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Reconcile(c *gin.Context) {
	cmd := availabilityapp.ReconcileCommand{PropertyID: strings.TrimSpace(c.Param("id"))}
	result, err := commands.Dispatch[availabilityapp.ReconcileCommand, dto.ReconcileResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
