package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/directions"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/schedule"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/workflow"

	"github.com/gin-gonic/gin"
)

// ExecutionHandler is the driver's surface over the route-execution core:
// the active route view, starting a schedule, completing stops, flagging
// issues, and the turn-by-turn path of the current leg.
type ExecutionHandler struct {
	Workflow   *workflow.Service
	Directions *directions.Client
}

// respondTransitionError maps workflow/state-machine errors onto HTTP
// statuses per the error taxonomy: illegal transitions and date gates are
// actionable client errors, everything else is a server error.
func respondTransitionError(c *gin.Context, err error) {
	var gate *schedule.NotYetEligibleError
	switch {
	case errors.As(err, &gate):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Schedule cannot be started yet",
			"eligibleOn": gate.EligibleOn.Format("2006-01-02"),
		})
	case errors.Is(err, schedule.ErrIneligibleTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNotScheduleOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Schedule is assigned to a different driver"})
	case errors.Is(err, workflow.ErrNoActiveSchedule):
		c.JSON(http.StatusNotFound, gin.H{"error": "No active schedule"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetActiveRoute returns the driver's current schedule and its derived route.
func (h *ExecutionHandler) GetActiveRoute(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)

	snap, err := h.Workflow.Active(context.Background(), driverID)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// StartSchedule starts execution of the driver's schedule. Re-invoking it on
// an already started schedule succeeds without effect.
func (h *ExecutionHandler) StartSchedule(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)
	scheduleID := c.Param("id")

	snap, err := h.Workflow.Start(context.Background(), driverID, scheduleID)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// CompleteStop records one stop's completion. The request is multipart: an
// optional "photo" file part and an optional "notes" field.
func (h *ExecutionHandler) CompleteStop(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)
	scheduleID := c.Param("id")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stop index"})
		return
	}

	notes := c.PostForm("notes")

	var photo io.Reader
	if fileHeader, err := c.FormFile("photo"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo"})
			return
		}
		defer file.Close()
		photo = file
	}

	snap, err := h.Workflow.CompleteStop(context.Background(), driverID, scheduleID, index, photo, notes)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

type ReportIssueRequest struct {
	Description string `json:"description" binding:"required"`
}

// ReportIssue flags a stop without touching its completion state.
func (h *ExecutionHandler) ReportIssue(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)
	scheduleID := c.Param("id")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stop index"})
		return
	}

	var req ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.Workflow.ReportIssue(context.Background(), driverID, scheduleID, index, req.Description)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetLegPath computes the driving path from the driver's reported position to
// the stop at ?stop=N of the active route. The lookup degrades to a straight
// line on any failure, so this endpoint only errors on bad input.
func (h *ExecutionHandler) GetLegPath(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameters lat and lng are required"})
		return
	}

	stopIndex, err := strconv.Atoi(c.Query("stop"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter stop is required"})
		return
	}

	snap, err := h.Workflow.Active(context.Background(), driverID)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	if stopIndex < 0 || stopIndex >= len(snap.Route.Stops) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stop index out of range"})
		return
	}

	origin := models.Coordinates{Latitude: lat, Longitude: lng}
	destination := snap.Route.Stops[stopIndex].Coordinates
	path := h.Directions.GetPath(c.Request.Context(), origin, destination)

	c.JSON(http.StatusOK, gin.H{"path": path})
}
