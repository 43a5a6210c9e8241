package handlers

import (
	"net/http"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/services"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
)

type BookmarkHandler struct{}

func NewBookmarkHandler() *BookmarkHandler {
	return &BookmarkHandler{}
}

// Toggle saves a place for the caller, or removes the save if it exists.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
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

	var bookmarked bool
	var existing models.Bookmark
	if err := db.DB.Where("user_id = ? AND place_id = ?", user.ID, place.ID).First(&existing).Error; err == nil {
		db.DB.Delete(&existing)
		if place.UserID != user.ID {
			services.AddPointsAsync(place.UserID, services.PointsPlaceUnbookmark, services.ActionPlaceUnbookmark)
		}
	} else {
		bookmark := models.Bookmark{
			UserID:  user.ID,
			PlaceID: place.ID,
		}
		db.DB.Create(&bookmark)
		bookmarked = true
		if place.UserID != user.ID {
			services.AddPointsAsync(place.UserID, services.PointsPlaceBookmarked, services.ActionPlaceBookmarked)
		}
	}

	utils.GetCache().Delete("place:detail:" + place.Pid)
	services.GetRepairService().Schedule(services.VotablePlace, place.ID)

	var count int64
	db.DB.Model(&models.Bookmark{}).Where("place_id = ?", place.ID).Count(&count)

	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked, "count": count})
}

// List returns the caller's saved places, newest first.
func (h *BookmarkHandler) List(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var bookmarks []models.Bookmark
	err := db.DB.Where("user_id = ?", user.ID).
		Preload("Place").
		Preload("Place.City").
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list bookmarks"})
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}
