package services

import (
	"errors"
	"strings"
	"time"
	"waypoint/internal/db"
	"waypoint/internal/errs"
	"waypoint/internal/models"
	"waypoint/internal/utils"

	"gorm.io/gorm"
)

// VotableType selects which entity table a vote targets.
type VotableType string

const (
	VotablePlace    VotableType = "place"
	VotablePlaybook VotableType = "playbook"
)

const (
	maxVoteAttempts = 3
	voteRetryWait   = 50 * time.Millisecond
)

// errStaleVote signals that the vote row changed between the lookup and the
// write. Plain error on purpose: runTx retries it against fresh state.
var errStaleVote = errors.New("vote row changed after read")

// VoteResult is the aggregate state after a cast plus the caller's vote.
type VoteResult struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	UserVote  int `json:"user_vote"` // -1, 0 or 1
}

// ParseVotableType validates a target type from the URL.
func ParseVotableType(s string) (VotableType, error) {
	switch VotableType(s) {
	case VotablePlace, VotablePlaybook:
		return VotableType(s), nil
	default:
		return "", errs.Errorf(errs.EINVALID, "unknown vote target %q", s)
	}
}

// CastVote applies one user's vote to a place or playbook.
//
// The three transitions run inside a single transaction so the cached
// counters never drift from the vote rows:
//   - no existing vote:      insert row, counter +1
//   - same value again:      delete row, counter -1 (toggle-off)
//   - opposite value:        flip row, old counter -1, new counter +1
//
// Repeating the same call therefore nets out to no vote, which also makes
// retries after a timeout safe. Transient store failures are retried with
// backoff before surfacing as unavailable.
func CastVote(userID uint, target VotableType, targetID uint, value int) (*VoteResult, error) {
	if userID == 0 {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "login required to vote")
	}
	if value != 1 && value != -1 {
		return nil, errs.Errorf(errs.EINVALID, "vote value must be 1 or -1, got %d", value)
	}
	if err := targetExists(target, targetID); err != nil {
		return nil, err
	}

	var userVote int
	err := runTx(func(tx *gorm.DB) error {
		var existing models.Vote
		err := voteQuery(tx, userID, target, targetID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First vote: insert row and bump the matching counter. The
			// unique (user, target) index backstops a concurrent insert of
			// the same pair; the loser retries and takes the toggle path.
			vote := models.Vote{UserID: userID, Value: value}
			if target == VotablePlace {
				vote.PlaceID = &targetID
			} else {
				vote.PlaybookID = &targetID
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, target, targetID, counterColumn(value), +1); err != nil {
				return err
			}
			userVote = value

		case err != nil:
			return err

		case existing.Value == value:
			// Same value again: toggle off.
			if err := removeVote(tx, &existing); err != nil {
				return err
			}
			if err := bumpCounter(tx, target, targetID, counterColumn(value), -1); err != nil {
				return err
			}
			userVote = 0

		default:
			// Change of mind: flip the row and move one count across.
			if err := flipVote(tx, &existing, value); err != nil {
				return err
			}
			if err := bumpCounter(tx, target, targetID, counterColumn(existing.Value), -1); err != nil {
				return err
			}
			if err := bumpCounter(tx, target, targetID, counterColumn(value), +1); err != nil {
				return err
			}
			userVote = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	up, down, err := readCounters(target, targetID)
	if err != nil {
		return nil, err
	}
	return &VoteResult{Upvotes: up, Downvotes: down, UserVote: userVote}, nil
}

// GetUserVote returns the caller's stored vote, or 0 when no row exists.
func GetUserVote(userID uint, target VotableType, targetID uint) (int, error) {
	var vote models.Vote
	err := voteQuery(db.DB, userID, target, targetID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return vote.Value, nil
}

// RecomputeAggregate recounts the vote rows for one target and overwrites
// the cached counters; for places the comment mean is re-derived as well.
// Repair path only, never on the request path.
func RecomputeAggregate(target VotableType, targetID uint) error {
	return runTx(func(tx *gorm.DB) error {
		var up, down int64
		base := tx.Model(&models.Vote{}).Where(voteColumn(target)+" = ?", targetID)
		if err := base.Session(&gorm.Session{}).Where("value = 1").Count(&up).Error; err != nil {
			return err
		}
		if err := base.Session(&gorm.Session{}).Where("value = -1").Count(&down).Error; err != nil {
			return err
		}

		cols := map[string]interface{}{
			"upvotes":   up,
			"downvotes": down,
		}

		if target == VotablePlace {
			var agg struct {
				Count int64
				Mean  float64
			}
			err := tx.Model(&models.Comment{}).
				Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as mean").
				Where("place_id = ?", targetID).
				Scan(&agg).Error
			if err != nil {
				return err
			}
			cols["rating"] = agg.Mean
			cols["rating_count"] = agg.Count
			return tx.Model(&models.Place{}).Where("id = ?", targetID).UpdateColumns(cols).Error
		}
		return tx.Model(&models.Playbook{}).Where("id = ?", targetID).UpdateColumns(cols).Error
	})
}

// AddComment appends an immutable rated comment to a place and folds the
// rating into the cached mean within the same transaction.
func AddComment(userID uint, placeID uint, text string, rating int) (*models.Comment, *models.Place, error) {
	if userID == 0 {
		return nil, nil, errs.Errorf(errs.EUNAUTHORIZED, "login required to comment")
	}
	text = strings.TrimSpace(utils.SanitizeText(text))
	if text == "" {
		return nil, nil, errs.Errorf(errs.EINVALID, "comment text is required")
	}
	if rating < 1 || rating > 5 {
		return nil, nil, errs.Errorf(errs.EINVALID, "rating must be between 1 and 5, got %d", rating)
	}
	if err := targetExists(VotablePlace, placeID); err != nil {
		return nil, nil, err
	}

	comment := models.Comment{
		Cid:     utils.RandomID(8),
		PlaceID: placeID,
		UserID:  userID,
		Text:    text,
		Rating:  rating,
	}
	err := runTx(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		// Both SET expressions read the pre-update row, so the running mean
		// uses the old count even though rating_count changes here too.
		return tx.Model(&models.Place{}).Where("id = ?", placeID).UpdateColumns(map[string]interface{}{
			"rating":       gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", float64(rating)),
			"rating_count": gorm.Expr("rating_count + 1"),
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}

	var place models.Place
	if err := db.DB.First(&place, placeID).Error; err != nil {
		return nil, nil, err
	}
	return &comment, &place, nil
}

// runTx executes fn in a transaction, retrying transient store failures
// with bounded backoff. Application errors pass through untouched; anything
// still failing after the last attempt surfaces as unavailable.
func runTx(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		err = db.DB.Transaction(fn)
		if err == nil {
			return nil
		}
		var appErr *errs.Error
		if errors.As(err, &appErr) {
			return err
		}
		if attempt < maxVoteAttempts {
			time.Sleep(voteRetryWait * time.Duration(attempt))
		}
	}
	return errs.Errorf(errs.EUNAVAILABLE, "store unavailable after %d attempts: %v", maxVoteAttempts, err)
}

func counterColumn(value int) string {
	if value == 1 {
		return "upvotes"
	}
	return "downvotes"
}

func voteColumn(target VotableType) string {
	if target == VotablePlace {
		return "place_id"
	}
	return "playbook_id"
}

func voteQuery(tx *gorm.DB, userID uint, target VotableType, targetID uint) *gorm.DB {
	return tx.Where("user_id = ?", userID).Where(voteColumn(target)+" = ?", targetID)
}

// removeVote deletes the row only while it still holds the value the lookup
// saw. Under read committed a concurrent cast can delete or flip the row
// between our plain read and the write; re-checking the value turns that
// interleaving into a zero-row write instead of a second counter decrement.
func removeVote(tx *gorm.DB, vote *models.Vote) error {
	res := tx.Where("value = ?", vote.Value).Delete(vote)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStaleVote
	}
	return nil
}

// flipVote is the compare-and-swap twin of removeVote for the switch path.
func flipVote(tx *gorm.DB, vote *models.Vote, value int) error {
	res := tx.Model(&models.Vote{}).
		Where("id = ? AND value = ?", vote.ID, vote.Value).
		UpdateColumn("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStaleVote
	}
	return nil
}

func bumpCounter(tx *gorm.DB, target VotableType, targetID uint, column string, delta int) error {
	expr := gorm.Expr(column+" + ?", delta)
	if target == VotablePlace {
		return tx.Model(&models.Place{}).Where("id = ?", targetID).UpdateColumn(column, expr).Error
	}
	return tx.Model(&models.Playbook{}).Where("id = ?", targetID).UpdateColumn(column, expr).Error
}

func targetExists(target VotableType, targetID uint) error {
	var err error
	if target == VotablePlace {
		err = db.DB.Select("id").First(&models.Place{}, targetID).Error
	} else {
		err = db.DB.Select("id").First(&models.Playbook{}, targetID).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Errorf(errs.ENOTFOUND, "%s %d does not exist", target, targetID)
	}
	return err
}

func readCounters(target VotableType, targetID uint) (int, int, error) {
	if target == VotablePlace {
		var p models.Place
		if err := db.DB.Select("upvotes", "downvotes").First(&p, targetID).Error; err != nil {
			return 0, 0, err
		}
		return p.Upvotes, p.Downvotes, nil
	}
	var pb models.Playbook
	if err := db.DB.Select("upvotes", "downvotes").First(&pb, targetID).Error; err != nil {
		return 0, 0, err
	}
	return pb.Upvotes, pb.Downvotes, nil
}
