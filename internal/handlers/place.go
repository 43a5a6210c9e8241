package handlers

import (
	"net/http"
	"strings"
	"time"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/services"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PlaceHandler struct{}

func NewPlaceHandler() *PlaceHandler {
	return &PlaceHandler{}
}

type createPlaceRequest struct {
	CityID      uint   `json:"city_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

func (h *PlaceHandler) Create(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req createPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	var city models.City
	if err := db.DB.First(&city, req.CityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "city does not exist"})
		return
	}

	place := models.Place{
		Pid:         utils.RandomID(8),
		CityID:      city.ID,
		UserID:      user.ID,
		Name:        req.Name,
		Category:    strings.TrimSpace(req.Category),
		Description: utils.SanitizeText(req.Description),
		Address:     strings.TrimSpace(req.Address),
	}
	if err := db.DB.Create(&place).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create place"})
		return
	}

	if services.CanEarnPlacePoints(user.ID) {
		services.AddPointsAsync(user.ID, services.PointsPlaceCreate, services.ActionPlaceCreate)
	}

	c.JSON(http.StatusCreated, place)
}

// ListByCity returns a city's places, hottest first.
func (h *PlaceHandler) ListByCity(c *gin.Context) {
	cityID := utils.StringToInt(c.Param("id"))

	var places []models.Place
	err := db.DB.Where("city_id = ?", cityID).
		Preload("User").
		Order("score DESC, created_at DESC").
		Limit(100).
		Find(&places).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list places"})
		return
	}
	c.JSON(http.StatusOK, places)
}

type placeDetail struct {
	models.Place
	BookmarkCount int64 `json:"bookmark_count"`
}

func (h *PlaceHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")
	cacheKey := "place:detail:" + pid

	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		// Views still count on cache hits
		db.DB.Model(&models.Place{}).Where("pid = ?", pid).UpdateColumn("views", gorm.Expr("views + 1"))
		c.JSON(http.StatusOK, cached)
		return
	}

	var place models.Place
	if err := db.DB.Where("pid = ?", pid).Preload("User").Preload("City").First(&place).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "place does not exist"})
		return
	}

	db.DB.Model(&place).UpdateColumn("views", gorm.Expr("views + 1"))

	var commentCount int64
	db.DB.Model(&models.Comment{}).Where("place_id = ?", place.ID).Count(&commentCount)
	place.CommentCount = int(commentCount)

	var bookmarkCount int64
	db.DB.Model(&models.Bookmark{}).Where("place_id = ?", place.ID).Count(&bookmarkCount)

	detail := placeDetail{Place: place, BookmarkCount: bookmarkCount}
	utils.GetCache().Set(cacheKey, detail, 2*time.Minute)

	c.JSON(http.StatusOK, detail)
}

func (h *PlaceHandler) ListComments(c *gin.Context) {
	var place models.Place
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&place).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "place does not exist"})
		return
	}

	var comments []models.Comment
	err := db.DB.Where("place_id = ?", place.ID).
		Preload("User").
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list comments"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

type createCommentRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// CreateComment appends a rated review and returns it with the updated
// place aggregate.
func (h *PlaceHandler) CreateComment(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var place models.Place
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&place).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "place does not exist"})
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, updated, err := services.AddComment(user.ID, place.ID, req.Text, req.Rating)
	if err != nil {
		JSONError(c, err)
		return
	}

	if services.CanEarnCommentPoints(user.ID) {
		services.AddPointsAsync(user.ID, services.PointsCommentCreate, services.ActionCommentCreate)
	}

	utils.GetCache().Delete("place:detail:" + place.Pid)
	services.GetRepairService().Schedule(services.VotablePlace, place.ID)

	c.JSON(http.StatusCreated, gin.H{
		"comment":      comment,
		"rating":       updated.Rating,
		"rating_count": updated.RatingCount,
	})
}
