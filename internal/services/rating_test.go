package services

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"waypoint/internal/errs"
	"waypoint/internal/models"

	"gorm.io/gorm"
)

func TestCastVoteFirstVote(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	place := seedPlace(t, g, owner)

	result, err := CastVote(voter.ID, VotablePlace, place.ID, 1)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if result.Upvotes != 1 || result.Downvotes != 0 || result.UserVote != 1 {
		t.Errorf("got %+v, want upvotes=1 downvotes=0 userVote=1", result)
	}

	var count int64
	g.Model(&models.Vote{}).Where("user_id = ? AND place_id = ?", voter.ID, place.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 vote row, got %d", count)
	}
}

func TestCastVoteToggleOff(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	place := seedPlace(t, g, owner)

	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	result, err := CastVote(voter.ID, VotablePlace, place.ID, 1)
	if err != nil {
		t.Fatalf("second cast failed: %v", err)
	}

	// Two identical casts must net out to never having voted
	if result.Upvotes != 0 || result.Downvotes != 0 || result.UserVote != 0 {
		t.Errorf("got %+v, want all zero after toggle-off", result)
	}

	var count int64
	g.Model(&models.Vote{}).Where("user_id = ? AND place_id = ?", voter.ID, place.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected vote row deleted, found %d", count)
	}

	value, err := GetUserVote(voter.ID, VotablePlace, place.ID)
	if err != nil {
		t.Fatalf("GetUserVote failed: %v", err)
	}
	if value != 0 {
		t.Errorf("expected user vote 0 after toggle-off, got %d", value)
	}
}

func TestCastVoteSwitchSides(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	place := seedPlace(t, g, owner)

	// +1, -1, +1 should land on a single upvote
	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
		t.Fatalf("cast +1 failed: %v", err)
	}
	mid, err := CastVote(voter.ID, VotablePlace, place.ID, -1)
	if err != nil {
		t.Fatalf("cast -1 failed: %v", err)
	}
	if mid.Upvotes != 0 || mid.Downvotes != 1 || mid.UserVote != -1 {
		t.Errorf("after switch got %+v, want upvotes=0 downvotes=1 userVote=-1", mid)
	}
	result, err := CastVote(voter.ID, VotablePlace, place.ID, 1)
	if err != nil {
		t.Fatalf("cast +1 again failed: %v", err)
	}
	if result.Upvotes != 1 || result.Downvotes != 0 || result.UserVote != 1 {
		t.Errorf("got %+v, want upvotes=1 downvotes=0 userVote=1", result)
	}

	var count int64
	g.Model(&models.Vote{}).Where("place_id = ?", place.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 vote row, got %d", count)
	}
}

func TestCastVoteScenario(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	userA := seedUser(t, g, "a@test.io")
	userB := seedUser(t, g, "b@test.io")
	place := seedPlace(t, g, owner)

	resA, err := CastVote(userA.ID, VotablePlace, place.ID, 1)
	if err != nil {
		t.Fatalf("A +1 failed: %v", err)
	}
	if resA.Upvotes != 1 || resA.Downvotes != 0 || resA.UserVote != 1 {
		t.Errorf("A +1: got %+v", resA)
	}

	resB, err := CastVote(userB.ID, VotablePlace, place.ID, -1)
	if err != nil {
		t.Fatalf("B -1 failed: %v", err)
	}
	if resB.Upvotes != 1 || resB.Downvotes != 1 || resB.UserVote != -1 {
		t.Errorf("B -1: got %+v", resB)
	}

	resA2, err := CastVote(userA.ID, VotablePlace, place.ID, 1)
	if err != nil {
		t.Fatalf("A toggle-off failed: %v", err)
	}
	if resA2.Upvotes != 0 || resA2.Downvotes != 1 || resA2.UserVote != 0 {
		t.Errorf("A toggle-off: got %+v", resA2)
	}
}

func TestCastVoteValidation(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	place := seedPlace(t, g, owner)

	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 0); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("value 0: got %v, want %s", err, errs.EINVALID)
	}
	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 2); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("value 2: got %v, want %s", err, errs.EINVALID)
	}
	if _, err := CastVote(voter.ID, VotablePlace, 99999, 1); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("missing place: got %v, want %s", err, errs.ENOTFOUND)
	}
	if _, err := CastVote(0, VotablePlace, place.ID, 1); errs.ErrorCode(err) != errs.EUNAUTHORIZED {
		t.Errorf("anonymous: got %v, want %s", err, errs.EUNAUTHORIZED)
	}
	if _, err := ParseVotableType("gig"); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("bad target type: got %v, want %s", err, errs.EINVALID)
	}
}

func TestCastVoteOnPlaybook(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	playbook := seedPlaybook(t, g, owner)

	result, err := CastVote(voter.ID, VotablePlaybook, playbook.ID, -1)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if result.Upvotes != 0 || result.Downvotes != 1 || result.UserVote != -1 {
		t.Errorf("got %+v, want downvotes=1 userVote=-1", result)
	}

	// A place vote by the same user must not collide with the playbook vote
	place := seedPlace(t, g, owner)
	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
		t.Fatalf("place vote after playbook vote failed: %v", err)
	}

	value, err := GetUserVote(voter.ID, VotablePlaybook, playbook.ID)
	if err != nil {
		t.Fatalf("GetUserVote failed: %v", err)
	}
	if value != -1 {
		t.Errorf("playbook vote: got %d, want -1", value)
	}
}

func TestCastVoteConcurrentUsers(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	place := seedPlace(t, g, owner)

	const n = 16
	voters := make([]*models.User, n)
	for i := range voters {
		voters[i] = seedUser(t, g, fmt.Sprintf("voter%d@test.io", i))
	}

	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := CastVote(voters[i].ID, VotablePlace, place.ID, 1); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent cast failed: %v", err)
	}

	var updated models.Place
	if err := g.First(&updated, place.ID).Error; err != nil {
		t.Fatalf("reload place: %v", err)
	}
	if updated.Upvotes != n {
		t.Errorf("expected upvotes=%d, got %d", n, updated.Upvotes)
	}

	// Cached counter must equal the true row count
	var rows int64
	g.Model(&models.Vote{}).Where("place_id = ? AND value = 1", place.ID).Count(&rows)
	if int(rows) != n {
		t.Errorf("expected %d vote rows, got %d", n, rows)
	}
}

// Replays the read-committed interleaving where a second cast by the same
// user reads the vote row, another cast commits a toggle-off, and the stale
// transaction then runs its write. The value re-check must turn the stale
// write into a retry, never a second counter decrement.
func TestCastVoteStaleToggleDoesNotDoubleDecrement(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	place := seedPlace(t, g, owner)

	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	var stale models.Vote
	if err := voteQuery(g, voter.ID, VotablePlace, place.ID).First(&stale).Error; err != nil {
		t.Fatalf("read vote row: %v", err)
	}

	// The other cast wins the race and toggles the vote off
	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
		t.Fatalf("toggle-off failed: %v", err)
	}

	err := g.Transaction(func(tx *gorm.DB) error {
		if err := removeVote(tx, &stale); err != nil {
			return err
		}
		return bumpCounter(tx, VotablePlace, place.ID, "upvotes", -1)
	})
	if !errors.Is(err, errStaleVote) {
		t.Fatalf("stale toggle: got %v, want errStaleVote", err)
	}

	var updated models.Place
	if err := g.First(&updated, place.ID).Error; err != nil {
		t.Fatalf("reload place: %v", err)
	}
	if updated.Upvotes != 0 || updated.Downvotes != 0 {
		t.Errorf("counters corrupted by stale write: up=%d down=%d", updated.Upvotes, updated.Downvotes)
	}
	var rows int64
	g.Model(&models.Vote{}).Where("place_id = ?", place.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("expected 0 vote rows, got %d", rows)
	}
}

func TestCastVoteStaleFlipDoesNotDoubleMove(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	voter := seedUser(t, g, "voter@test.io")
	place := seedPlace(t, g, owner)

	if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	var stale models.Vote
	if err := voteQuery(g, voter.ID, VotablePlace, place.ID).First(&stale).Error; err != nil {
		t.Fatalf("read vote row: %v", err)
	}

	// A concurrent switch to -1 commits first
	if _, err := CastVote(voter.ID, VotablePlace, place.ID, -1); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	err := g.Transaction(func(tx *gorm.DB) error {
		if err := flipVote(tx, &stale, -1); err != nil {
			return err
		}
		if err := bumpCounter(tx, VotablePlace, place.ID, "upvotes", -1); err != nil {
			return err
		}
		return bumpCounter(tx, VotablePlace, place.ID, "downvotes", +1)
	})
	if !errors.Is(err, errStaleVote) {
		t.Fatalf("stale flip: got %v, want errStaleVote", err)
	}

	var updated models.Place
	if err := g.First(&updated, place.ID).Error; err != nil {
		t.Fatalf("reload place: %v", err)
	}
	if updated.Upvotes != 0 || updated.Downvotes != 1 {
		t.Errorf("counters corrupted by stale write: up=%d down=%d", updated.Upvotes, updated.Downvotes)
	}

	// The path stays usable after the stale attempt: toggling the -1 off
	// leaves counters matching the rows
	if _, err := CastVote(voter.ID, VotablePlace, place.ID, -1); err != nil {
		t.Fatalf("toggle after stale attempt failed: %v", err)
	}
	if err := g.First(&updated, place.ID).Error; err != nil {
		t.Fatalf("reload place: %v", err)
	}
	var rows int64
	g.Model(&models.Vote{}).Where("place_id = ?", place.ID).Count(&rows)
	if updated.Upvotes != 0 || updated.Downvotes != 0 || rows != 0 {
		t.Errorf("up=%d down=%d rows=%d, want all 0", updated.Upvotes, updated.Downvotes, rows)
	}
}

func TestRecomputeAggregateHealsDrift(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	place := seedPlace(t, g, owner)

	for i := 0; i < 3; i++ {
		voter := seedUser(t, g, fmt.Sprintf("v%d@test.io", i))
		if _, err := CastVote(voter.ID, VotablePlace, place.ID, 1); err != nil {
			t.Fatalf("cast failed: %v", err)
		}
	}
	down := seedUser(t, g, "down@test.io")
	if _, err := CastVote(down.ID, VotablePlace, place.ID, -1); err != nil {
		t.Fatalf("downvote failed: %v", err)
	}

	// Simulate drift by scribbling on the cached counters
	g.Model(&models.Place{}).Where("id = ?", place.ID).UpdateColumns(map[string]interface{}{
		"upvotes":   99,
		"downvotes": 42,
		"rating":    3.3,
	})

	if err := RecomputeAggregate(VotablePlace, place.ID); err != nil {
		t.Fatalf("RecomputeAggregate failed: %v", err)
	}

	var healed models.Place
	if err := g.First(&healed, place.ID).Error; err != nil {
		t.Fatalf("reload place: %v", err)
	}
	if healed.Upvotes != 3 || healed.Downvotes != 1 {
		t.Errorf("got upvotes=%d downvotes=%d, want 3/1", healed.Upvotes, healed.Downvotes)
	}
	if healed.Rating != 0 || healed.RatingCount != 0 {
		t.Errorf("no comments exist, rating should reset to 0, got %.2f/%d", healed.Rating, healed.RatingCount)
	}
}

func TestAddComment(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	author := seedUser(t, g, "author@test.io")
	place := seedPlace(t, g, owner)

	comment, updated, err := AddComment(author.ID, place.ID, "Great rooftop, terrible wifi", 4)
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if comment.Cid == "" || comment.Rating != 4 {
		t.Errorf("unexpected comment %+v", comment)
	}
	if updated.Rating != 4.0 || updated.RatingCount != 1 {
		t.Errorf("got rating=%.2f count=%d, want 4.0/1", updated.Rating, updated.RatingCount)
	}
}

func TestAddCommentRunningMean(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	author := seedUser(t, g, "author@test.io")
	place := seedPlace(t, g, owner)

	// Prior state: three ratings averaging 4.0
	for i, r := range []int{3, 4, 5} {
		u := seedUser(t, g, fmt.Sprintf("prior%d@test.io", i))
		if _, _, err := AddComment(u.ID, place.ID, "ok", r); err != nil {
			t.Fatalf("seed comment failed: %v", err)
		}
	}

	_, updated, err := AddComment(author.ID, place.ID, "top spot", 5)
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if updated.RatingCount != 4 {
		t.Errorf("got count %d, want 4", updated.RatingCount)
	}
	if math.Abs(updated.Rating-4.25) > 1e-9 {
		t.Errorf("got rating %.4f, want 4.25", updated.Rating)
	}
}

func TestAddCommentValidation(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	author := seedUser(t, g, "author@test.io")
	place := seedPlace(t, g, owner)

	if _, _, err := AddComment(author.ID, place.ID, "", 4); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("empty text: got %v, want %s", err, errs.EINVALID)
	}
	if _, _, err := AddComment(author.ID, place.ID, "   ", 4); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("whitespace text: got %v, want %s", err, errs.EINVALID)
	}
	if _, _, err := AddComment(author.ID, place.ID, "fine", 0); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("rating 0: got %v, want %s", err, errs.EINVALID)
	}
	if _, _, err := AddComment(author.ID, place.ID, "fine", 6); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("rating 6: got %v, want %s", err, errs.EINVALID)
	}
	if _, _, err := AddComment(author.ID, 99999, "fine", 4); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("missing place: got %v, want %s", err, errs.ENOTFOUND)
	}
	if _, _, err := AddComment(0, place.ID, "fine", 4); errs.ErrorCode(err) != errs.EUNAUTHORIZED {
		t.Errorf("anonymous: got %v, want %s", err, errs.EUNAUTHORIZED)
	}

	// None of the rejected comments may have touched the aggregate
	var check models.Place
	g.First(&check, place.ID)
	if check.Rating != 0 || check.RatingCount != 0 {
		t.Errorf("aggregate moved on rejected input: %.2f/%d", check.Rating, check.RatingCount)
	}
}

func TestRecomputeAggregateRederivesMean(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	place := seedPlace(t, g, owner)

	for i, r := range []int{2, 4} {
		u := seedUser(t, g, fmt.Sprintf("c%d@test.io", i))
		if _, _, err := AddComment(u.ID, place.ID, "meh", r); err != nil {
			t.Fatalf("comment failed: %v", err)
		}
	}

	g.Model(&models.Place{}).Where("id = ?", place.ID).UpdateColumn("rating", 1.0)

	if err := RecomputeAggregate(VotablePlace, place.ID); err != nil {
		t.Fatalf("RecomputeAggregate failed: %v", err)
	}

	var healed models.Place
	g.First(&healed, place.ID)
	if math.Abs(healed.Rating-3.0) > 1e-9 || healed.RatingCount != 2 {
		t.Errorf("got rating=%.2f count=%d, want 3.0/2", healed.Rating, healed.RatingCount)
	}
}
