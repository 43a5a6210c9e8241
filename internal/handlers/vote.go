package handlers

import (
	"net/http"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/services"
	"waypoint/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

type castRequest struct {
	Value int `json:"value"` // 1 or -1
}

// Cast applies a vote to a place or playbook and returns the aggregate.
// Casting the same value twice toggles the vote off.
func (h *VoteHandler) Cast(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	target, err := services.ParseVotableType(c.Param("type"))
	if err != nil {
		JSONError(c, err)
		return
	}
	targetID := uint(utils.StringToInt(c.Param("id")))

	var req castRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := services.CastVote(user.ID, target, targetID, req.Value)
	if err != nil {
		JSONError(c, err)
		return
	}

	// Reputation for the content author; self-votes earn nothing. Deliberate
	// toggle-offs and switches are not unwound, matching how points worked
	// before votes became retractable.
	go func() {
		authorID := targetAuthor(target, targetID)
		if authorID == 0 || authorID == user.ID {
			return
		}
		switch {
		case result.UserVote == 1 && target == services.VotablePlace:
			services.AddPointsAsync(authorID, services.PointsPlaceLiked, services.ActionPlaceLiked)
		case result.UserVote == 1 && target == services.VotablePlaybook:
			services.AddPointsAsync(authorID, services.PointsPlaybookLiked, services.ActionPlaybookLiked)
		case result.UserVote == -1 && target == services.VotablePlace:
			services.AddPointsAsync(authorID, services.PointsPlaceDownvoted, services.ActionPlaceDownvoted)
			services.AddPointsAsync(user.ID, services.PointsDownvoteOther, services.ActionDownvoteOther)
		case result.UserVote == -1 && target == services.VotablePlaybook:
			services.AddPointsAsync(authorID, services.PointsPlaybookDownvoted, services.ActionPlaybookDownvoted)
			services.AddPointsAsync(user.ID, services.PointsDownvoteOther, services.ActionDownvoteOther)
		}
	}()

	// Schedule a recount and score refresh off the hot path
	services.GetRepairService().Schedule(target, targetID)
	invalidateDetail(target, targetID)

	c.JSON(http.StatusOK, result)
}

// Get returns the caller's current vote on a target, 0 when none.
func (h *VoteHandler) Get(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	target, err := services.ParseVotableType(c.Param("type"))
	if err != nil {
		JSONError(c, err)
		return
	}
	targetID := uint(utils.StringToInt(c.Param("id")))

	value, err := services.GetUserVote(user.ID, target, targetID)
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_vote": value})
}

func targetAuthor(target services.VotableType, targetID uint) uint {
	if target == services.VotablePlace {
		var place models.Place
		if err := db.DB.Select("user_id").First(&place, targetID).Error; err == nil {
			return place.UserID
		}
		return 0
	}
	var playbook models.Playbook
	if err := db.DB.Select("user_id").First(&playbook, targetID).Error; err == nil {
		return playbook.UserID
	}
	return 0
}

func invalidateDetail(target services.VotableType, targetID uint) {
	if target == services.VotablePlace {
		var place models.Place
		if err := db.DB.Select("pid").First(&place, targetID).Error; err == nil {
			utils.GetCache().Delete("place:detail:" + place.Pid)
		}
		return
	}
	var playbook models.Playbook
	if err := db.DB.Select("pid").First(&playbook, targetID).Error; err == nil {
		utils.GetCache().Delete("playbook:detail:" + playbook.Pid)
	}
}
