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

type PlaybookHandler struct{}

func NewPlaybookHandler() *PlaybookHandler {
	return &PlaybookHandler{}
}

type playbookEntryRequest struct {
	PlaceID *uint  `json:"place_id"`
	Note    string `json:"note"`
}

type playbookRequest struct {
	CityID  uint                   `json:"city_id"`
	Title   string                 `json:"title"`
	Body    string                 `json:"body"` // markdown
	Entries []playbookEntryRequest `json:"entries"`
}

func (h *PlaybookHandler) Create(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var req playbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	var city models.City
	if err := db.DB.First(&city, req.CityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "city does not exist"})
		return
	}

	playbook := models.Playbook{
		Pid:    utils.RandomID(8),
		CityID: city.ID,
		UserID: user.ID,
		Title:  req.Title,
		Body:   req.Body,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&playbook).Error; err != nil {
			return err
		}
		return createEntries(tx, playbook.ID, req.Entries)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create playbook"})
		return
	}

	services.AddPointsAsync(user.ID, services.PointsPlaybookCreate, services.ActionPlaybookCreate)

	c.JSON(http.StatusCreated, playbook)
}

func (h *PlaybookHandler) List(c *gin.Context) {
	query := db.DB.Preload("User").Preload("City").Order("upvotes - downvotes DESC, created_at DESC").Limit(50)
	if cityID := utils.StringToInt(c.Query("city_id")); cityID > 0 {
		query = query.Where("city_id = ?", cityID)
	}

	var playbooks []models.Playbook
	if err := query.Find(&playbooks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list playbooks"})
		return
	}
	c.JSON(http.StatusOK, playbooks)
}

type playbookDetail struct {
	models.Playbook
	BodyHTML string `json:"body_html"`
}

func (h *PlaybookHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")
	cacheKey := "playbook:detail:" + pid

	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	var playbook models.Playbook
	err := db.DB.Where("pid = ?", pid).
		Preload("User").
		Preload("City").
		Preload("Entries", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Entries.Place").
		First(&playbook).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playbook does not exist"})
		return
	}

	detail := playbookDetail{
		Playbook: playbook,
		BodyHTML: utils.RenderMarkdown(playbook.Body),
	}
	utils.GetCache().Set(cacheKey, detail, 2*time.Minute)

	c.JSON(http.StatusOK, detail)
}

// Update edits a playbook, snapshotting the previous content as an
// append-only revision first.
func (h *PlaybookHandler) Update(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	var playbook models.Playbook
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&playbook).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playbook does not exist"})
		return
	}
	if playbook.UserID != user.ID && user.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your playbook"})
		return
	}

	var req playbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		revision := models.PlaybookRevision{
			PlaybookID: playbook.ID,
			EditorID:   user.ID,
			Title:      playbook.Title,
			Body:       playbook.Body,
		}
		if err := tx.Create(&revision).Error; err != nil {
			return err
		}

		playbook.Title = req.Title
		playbook.Body = req.Body
		if err := tx.Model(&playbook).Updates(map[string]interface{}{
			"title": req.Title,
			"body":  req.Body,
		}).Error; err != nil {
			return err
		}

		// Entries are replaced wholesale on edit
		if err := tx.Where("playbook_id = ?", playbook.ID).Delete(&models.PlaybookEntry{}).Error; err != nil {
			return err
		}
		return createEntries(tx, playbook.ID, req.Entries)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update playbook"})
		return
	}

	utils.GetCache().Delete("playbook:detail:" + playbook.Pid)

	c.JSON(http.StatusOK, playbook)
}

func (h *PlaybookHandler) ListRevisions(c *gin.Context) {
	var playbook models.Playbook
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&playbook).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playbook does not exist"})
		return
	}

	var revisions []models.PlaybookRevision
	err := db.DB.Where("playbook_id = ?", playbook.ID).
		Preload("Editor").
		Order("created_at DESC").
		Find(&revisions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list revisions"})
		return
	}
	c.JSON(http.StatusOK, revisions)
}

func createEntries(tx *gorm.DB, playbookID uint, entries []playbookEntryRequest) error {
	for i, e := range entries {
		entry := models.PlaybookEntry{
			PlaybookID: playbookID,
			PlaceID:    e.PlaceID,
			Position:   i + 1,
			Note:       utils.SanitizeText(e.Note),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}
