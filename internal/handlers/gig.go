package handlers

import (
	"net/http"
	"strings"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/services"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
)

type GigHandler struct{}

func NewGigHandler() *GigHandler {
	return &GigHandler{}
}

type createGigRequest struct {
	CityID      uint   `json:"city_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Pay         string `json:"pay"`
	Contact     string `json:"contact"`
}

func (h *GigHandler) Create(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req createGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Contact = strings.TrimSpace(req.Contact)
	if req.Title == "" || req.Contact == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and contact are required"})
		return
	}

	var city models.City
	if err := db.DB.First(&city, req.CityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "city does not exist"})
		return
	}

	gig := models.Gig{
		Gid:         utils.RandomID(8),
		CityID:      city.ID,
		UserID:      user.ID,
		Title:       req.Title,
		Description: utils.SanitizeText(req.Description),
		Pay:         strings.TrimSpace(req.Pay),
		Contact:     req.Contact,
		Open:        true,
	}
	if err := db.DB.Create(&gig).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create gig"})
		return
	}

	services.AddPointsAsync(user.ID, services.PointsGigCreate, services.ActionGigCreate)

	c.JSON(http.StatusCreated, gig)
}

func (h *GigHandler) ListByCity(c *gin.Context) {
	cityID := utils.StringToInt(c.Param("id"))

	var gigs []models.Gig
	err := db.DB.Where("city_id = ? AND open = ?", cityID, true).
		Preload("User").
		Order("created_at DESC").
		Limit(100).
		Find(&gigs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list gigs"})
		return
	}
	c.JSON(http.StatusOK, gigs)
}

func (h *GigHandler) Detail(c *gin.Context) {
	var gig models.Gig
	err := db.DB.Where("gid = ?", c.Param("gid")).
		Preload("User").
		Preload("City").
		First(&gig).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "gig does not exist"})
		return
	}
	c.JSON(http.StatusOK, gig)
}
