package handlers

import (
	"net/http"
	"strings"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler persists rooms and messages; clients poll for new messages.
type ChatHandler struct{}

func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

type createRoomRequest struct {
	Name   string `json:"name"`
	CityID *uint  `json:"city_id"`
}

func (h *ChatHandler) CreateRoom(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.CityID != nil {
		var city models.City
		if err := db.DB.First(&city, *req.CityID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "city does not exist"})
			return
		}
	}

	room := models.ChatRoom{
		Name:      req.Name,
		CityID:    req.CityID,
		CreatedBy: user.ID,
	}
	if err := db.DB.Create(&room).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "room name already taken"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	query := db.DB.Preload("City").Order("created_at ASC")
	if cityID := utils.StringToInt(c.Query("city_id")); cityID > 0 {
		query = query.Where("city_id = ?", cityID)
	}

	var rooms []models.ChatRoom
	if err := query.Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ListMessages returns a room's messages, oldest first. Pass since_id to
// fetch only messages newer than the last one seen.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	roomID := utils.StringToInt(c.Param("id"))

	var room models.ChatRoom
	if err := db.DB.First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room does not exist"})
		return
	}

	query := db.DB.Where("room_id = ?", room.ID).Preload("User").Order("id ASC").Limit(200)
	if sinceID := utils.StringToInt(c.Query("since_id")); sinceID > 0 {
		query = query.Where("id > ?", sinceID)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (h *ChatHandler) PostMessage(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var room models.ChatRoom
	if err := db.DB.First(&room, utils.StringToInt(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room does not exist"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	body := strings.TrimSpace(utils.SanitizeText(req.Body))
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message body is required"})
		return
	}

	message := models.ChatMessage{
		RoomID: room.ID,
		UserID: user.ID,
		Body:   body,
	}
	if err := db.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not post message"})
		return
	}
	c.JSON(http.StatusCreated, message)
}
