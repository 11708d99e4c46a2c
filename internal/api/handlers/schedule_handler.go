package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/schedule"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/storage"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// ScheduleHandler covers the dispatcher's side of schedules: creation, the
// approval chain, cancellation, and listings.
type ScheduleHandler struct {
	Schedules *storage.ScheduleStore
	Machine   *schedule.Machine
	Workflow  *workflow.Service
}

type CreateScheduleRequest struct {
	DriverID string `json:"driverID" binding:"required"`
	// TPSRoute is the stop order as produced by the external route
	// optimizer; it is stored verbatim and never reordered here.
	TPSRoute          []string   `json:"tpsRoute" binding:"required,min=1"`
	Date              time.Time  `json:"date" binding:"required"`
	AssignedDate      *time.Time `json:"assignedDate"`
	IsRecurring       bool       `json:"isRecurring"`
	EstimatedDuration int        `json:"estimatedDuration"`
}

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newSchedule := &models.Schedule{
		ScheduleID:        uuid.NewString(),
		DriverID:          req.DriverID,
		TPSRoute:          req.TPSRoute,
		Date:              req.Date,
		AssignedDate:      req.AssignedDate,
		Status:            models.StatusPending,
		IsRecurring:       req.IsRecurring,
		EstimatedDuration: req.EstimatedDuration,
		CreatedAt:         time.Now(),
	}

	if err := h.Schedules.Insert(context.Background(), newSchedule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		return
	}

	c.JSON(http.StatusCreated, newSchedule)
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	scheduleID := c.Param("id")

	s, err := h.Schedules.GetByID(context.Background(), scheduleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, s)
}

// GetSchedulesByDriver lists a driver's schedules for the dispatcher.
func (h *ScheduleHandler) GetSchedulesByDriver(c *gin.Context) {
	driverID := c.Param("id")

	schedules, err := h.Schedules.ListByDriver(context.Background(), driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// GetMySchedules lists the authenticated driver's own schedules.
func (h *ScheduleHandler) GetMySchedules(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)

	schedules, err := h.Schedules.ListByDriver(context.Background(), driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// AdvanceSchedule moves a schedule one step along the approval chain
// (PENDING -> PENDING_APPROVAL -> APPROVED -> ASSIGNED).
func (h *ScheduleHandler) AdvanceSchedule(c *gin.Context) {
	scheduleID := c.Param("id")

	s, err := h.Schedules.GetByID(context.Background(), scheduleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		}
		return
	}

	s, err = h.Machine.Advance(context.Background(), s)
	if err != nil {
		if errors.Is(err, schedule.ErrIneligibleTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to advance schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, s)
}

// CancelSchedule moves any non-terminal schedule to CANCELLED. Cancellation
// goes through the workflow service so that cancelling a schedule in
// execution also ends the driver's location tracking.
func (h *ScheduleHandler) CancelSchedule(c *gin.Context) {
	scheduleID := c.Param("id")

	s, err := h.Workflow.Cancel(context.Background(), scheduleID)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		case errors.Is(err, schedule.ErrIneligibleTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, s)
}

// GetMyDailyStats returns today's completion counts for the driver's home
// screen.
func (h *ScheduleHandler) GetMyDailyStats(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)

	completedSchedules, completedStops, err := h.Schedules.CountCompletedOn(context.Background(), driverID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute daily stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":               time.Now().Format("2006-01-02"),
		"completedSchedules": completedSchedules,
		"completedStops":     completedStops,
	})
}
