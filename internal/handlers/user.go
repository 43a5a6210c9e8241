package handlers

import (
	"net/http"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type profileResponse struct {
	models.User
	Level         string `json:"level"`
	PlaceCount    int64  `json:"place_count"`
	PlaybookCount int64  `json:"playbook_count"`
}

func (h *UserHandler) Profile(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user does not exist"})
		return
	}

	resp := profileResponse{User: user, Level: utils.LevelName(user.Points)}
	db.DB.Model(&models.Place{}).Where("user_id = ?", user.ID).Count(&resp.PlaceCount)
	db.DB.Model(&models.Playbook{}).Where("user_id = ?", user.ID).Count(&resp.PlaybookCount)

	c.JSON(http.StatusOK, resp)
}

// PointLogs returns the caller's reputation ledger, newest first.
func (h *UserHandler) PointLogs(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var logs []models.PointLog
	err := db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list point logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
