package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/location"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// LocationHandler receives the driver app's periodic position ticks and
// serves the last published position to the dispatch dashboard.
type LocationHandler struct {
	Reporter  *location.Reporter
	Schedules *storage.ScheduleStore
}

// Latitude and longitude are pointers so that 0 (the equator, the prime
// meridian) still counts as present under the required rule.
type LocationTickRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Speed     float64  `json:"speed"`
	Heading   float64  `json:"heading" binding:"min=0,max=360"`
}

// PublishLocation records one position sample. Samples are only accepted
// while the driver has a schedule in progress; the publication itself is
// best-effort and never fails the request.
func (h *LocationHandler) PublishLocation(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)

	var req LocationTickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := h.Schedules.ActiveForDriver(context.Background(), driverID)
	if err != nil || active.Status != models.StatusInProgress {
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check active schedule"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "No schedule in progress; location not tracked"})
		return
	}

	h.Reporter.Publish(context.Background(), models.DriverLocation{
		DriverID:   driverID,
		ScheduleID: active.ScheduleID,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Speed:      req.Speed,
		Heading:    req.Heading,
		Timestamp:  time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// StopTracking deletes the driver's published position, for an explicit
// end-of-tracking from the app.
func (h *LocationHandler) StopTracking(c *gin.Context) {
	driverID := c.MustGet("user_id").(string)

	h.Reporter.Clear(context.Background(), driverID)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetDriverLocation returns a driver's last published position for the
// dispatch dashboard.
func (h *LocationHandler) GetDriverLocation(c *gin.Context) {
	driverID := c.Param("id")

	loc, err := h.Reporter.Current(context.Background(), driverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read driver location"})
		return
	}
	if loc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver is not being tracked"})
		return
	}

	c.JSON(http.StatusOK, loc)
}
