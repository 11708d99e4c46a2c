package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// PointHandler manages the collection-point catalog.
type PointHandler struct {
	Points *storage.PointStore
}

// Pointers keep 0 a valid coordinate under the required rule.
type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type CreatePointRequest struct {
	PointID     string             `json:"pointID" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Address     string             `json:"address" binding:"required"`
	Coordinates CoordinatesRequest `json:"coordinates" binding:"required"`
	Status      string             `json:"status" binding:"omitempty,oneof=FULL AVAILABLE UNDER_MAINTENANCE"`
}

type SetPointStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=FULL AVAILABLE UNDER_MAINTENANCE"`
}

func (h *PointHandler) CreatePoint(c *gin.Context) {
	var req CreatePointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.PointStatusAvailable
	}

	newPoint := &models.CollectionPoint{
		PointID: req.PointID,
		Name:    req.Name,
		Address: req.Address,
		Coordinates: models.Coordinates{
			Latitude:  *req.Coordinates.Latitude,
			Longitude: *req.Coordinates.Longitude,
		},
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.Points.Insert(context.Background(), newPoint); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, newPoint)
}

func (h *PointHandler) GetAllPoints(c *gin.Context) {
	points, err := h.Points.All(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query collection points"})
		return
	}

	c.JSON(http.StatusOK, points)
}

func (h *PointHandler) GetPointByID(c *gin.Context) {
	pointID := c.Param("id")

	point, err := h.Points.GetByID(context.Background(), pointID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection point not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve collection point"})
		}
		return
	}

	c.JSON(http.StatusOK, point)
}

func (h *PointHandler) UpdatePoint(c *gin.Context) {
	pointID := c.Param("id")

	var req CreatePointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point := &models.CollectionPoint{
		Name:    req.Name,
		Address: req.Address,
		Coordinates: models.Coordinates{
			Latitude:  *req.Coordinates.Latitude,
			Longitude: *req.Coordinates.Longitude,
		},
		Status: req.Status,
	}

	if err := h.Points.Update(context.Background(), pointID, point); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update collection point"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection point updated successfully"})
}

// SetPointStatus flips a point's fill status, e.g. back to AVAILABLE after a
// pickup or to FULL when residents report it.
func (h *PointHandler) SetPointStatus(c *gin.Context) {
	pointID := c.Param("id")

	var req SetPointStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Points.SetStatus(context.Background(), pointID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update point status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Point status updated successfully"})
}
