package handlers

import (
	"net/http"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
)

type CityHandler struct{}

func NewCityHandler() *CityHandler {
	return &CityHandler{}
}

func (h *CityHandler) List(c *gin.Context) {
	var cities []models.City
	if err := db.DB.Order("name ASC").Find(&cities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list cities"})
		return
	}

	for i := range cities {
		var count int64
		db.DB.Model(&models.Place{}).Where("city_id = ?", cities[i].ID).Count(&count)
		cities[i].PlaceCount = int(count)
	}

	c.JSON(http.StatusOK, cities)
}

func (h *CityHandler) Detail(c *gin.Context) {
	var city models.City
	if err := db.DB.First(&city, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "city does not exist"})
		return
	}

	var count int64
	db.DB.Model(&models.Place{}).Where("city_id = ?", city.ID).Count(&count)
	city.PlaceCount = int(count)

	c.JSON(http.StatusOK, city)
}
