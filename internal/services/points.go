package services

import (
	"time"
	"waypoint/internal/db"
	"waypoint/internal/models"

	"gorm.io/gorm"
)

// Reputation actions
const (
	ActionPlaceCreate       = "submitted a place"
	ActionPlaceLiked        = "place upvoted"
	ActionPlaceDownvoted    = "place downvoted"
	ActionPlaceBookmarked   = "place bookmarked"
	ActionPlaceUnbookmark   = "place bookmark removed"
	ActionPlaybookCreate    = "published a playbook"
	ActionPlaybookLiked     = "playbook upvoted"
	ActionPlaybookDownvoted = "playbook downvoted"
	ActionCommentCreate     = "posted a review"
	ActionGigCreate         = "posted a gig"
	ActionDownvoteOther     = "downvoted someone"
)

// Reputation values
const (
	PointsPlaceCreate       = 2
	PointsPlaceLiked        = 1
	PointsPlaceDownvoted    = -3
	PointsPlaceBookmarked   = 3
	PointsPlaceUnbookmark   = -3
	PointsPlaybookCreate    = 3
	PointsPlaybookLiked     = 1
	PointsPlaybookDownvoted = -3
	PointsCommentCreate     = 1
	PointsGigCreate         = 1
	PointsDownvoteOther     = -1
)

// Daily earn limits
const (
	DailyPlaceLimit   = 3 // first 3 places a day earn points
	DailyCommentLimit = 3 // first 3 reviews a day earn points
)

// AddPoints writes a ledger row and updates the balance in one transaction.
// Positive amounts earn, negative deduct.
func AddPoints(userID uint, amount int, action string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		entry := models.PointLog{
			UserID: userID,
			Amount: amount,
			Action: action,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("points", gorm.Expr("points + ?", amount)).
			Error; err != nil {
			return err
		}

		return nil
	})
}

// AddPointsAsync awards points without blocking the request.
func AddPointsAsync(userID uint, amount int, action string) {
	go func() {
		_ = AddPoints(userID, amount, action)
	}()
}

func getTodayRange() (time.Time, time.Time) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	return startOfDay, endOfDay
}

func countTodayPointLogs(userID uint, action string) int64 {
	startOfDay, endOfDay := getTodayRange()
	var count int64
	db.DB.Model(&models.PointLog{}).
		Where("user_id = ? AND action = ? AND created_at >= ? AND created_at < ?", userID, action, startOfDay, endOfDay).
		Count(&count)
	return count
}

// CanEarnPlacePoints reports whether today's place-submission quota is left.
func CanEarnPlacePoints(userID uint) bool {
	return countTodayPointLogs(userID, ActionPlaceCreate) < DailyPlaceLimit
}

// CanEarnCommentPoints reports whether today's review quota is left.
func CanEarnCommentPoints(userID uint) bool {
	return countTodayPointLogs(userID, ActionCommentCreate) < DailyCommentLimit
}
