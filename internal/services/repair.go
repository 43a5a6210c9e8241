package services

import (
	"log"
	"sync"
	"time"
	"waypoint/internal/db"
	"waypoint/internal/models"
	"waypoint/internal/utils"
)

// repairTarget identifies one votable entity in the repair queue.
type repairTarget struct {
	Type VotableType
	ID   uint
}

// RepairService recounts cached vote/rating aggregates off the hot path.
// Vote handlers schedule a target after every cast; a single worker drains
// the queue in batches so a burst of votes on one place collapses into one
// recount. A nightly sweep re-checks everything touched recently, so even a
// crash between a counter update and its vote row commit heals within a day.
type RepairService struct {
	queue   chan repairTarget
	pending map[repairTarget]bool
	mu      sync.Mutex
}

var (
	repairService *RepairService
	repairOnce    sync.Once
)

// GetRepairService returns the singleton repair service.
func GetRepairService() *RepairService {
	repairOnce.Do(func() {
		repairService = &RepairService{
			queue:   make(chan repairTarget, 1000), // buffered so callers never block
			pending: make(map[repairTarget]bool),
		}
		go repairService.worker()
	})
	return repairService
}

// Schedule enqueues a target for recount, deduplicating against targets
// already waiting.
func (s *RepairService) Schedule(target VotableType, id uint) {
	t := repairTarget{Type: target, ID: id}

	s.mu.Lock()
	if s.pending[t] {
		s.mu.Unlock()
		return
	}
	s.pending[t] = true
	s.mu.Unlock()

	select {
	case s.queue <- t:
	default:
		// Queue full: drop the pending mark so a later vote can re-schedule.
		s.mu.Lock()
		delete(s.pending, t)
		s.mu.Unlock()
		log.Printf("repair queue full, skipping %s %d", target, id)
	}
}

func (s *RepairService) worker() {
	batch := make([]repairTarget, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case t := <-s.queue:
			batch = append(batch, t)
			if len(batch) >= 50 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *RepairService) processBatch(targets []repairTarget) {
	for _, t := range targets {
		s.repairOne(t)

		s.mu.Lock()
		delete(s.pending, t)
		s.mu.Unlock()
	}
}

// repairOne recounts one target's aggregates and, for places, refreshes the
// trending score from the healed counts.
func (s *RepairService) repairOne(t repairTarget) {
	if err := RecomputeAggregate(t.Type, t.ID); err != nil {
		log.Printf("aggregate recount failed for %s %d: %v", t.Type, t.ID, err)
		return
	}

	if t.Type != VotablePlace {
		return
	}

	var place models.Place
	if err := db.DB.First(&place, t.ID).Error; err != nil {
		return
	}

	var bookmarks, comments int64
	db.DB.Model(&models.Bookmark{}).Where("place_id = ?", t.ID).Count(&bookmarks)
	db.DB.Model(&models.Comment{}).Where("place_id = ?", t.ID).Count(&comments)

	score := utils.TrendingScore(place.CreatedAt, place.Upvotes, place.Downvotes, int(bookmarks), int(comments))
	if err := db.DB.Model(&place).UpdateColumn("score", score).Error; err != nil {
		log.Printf("score refresh failed for place %d: %v", t.ID, err)
	}
}

// StartNightlySweep recounts every target voted on in the last 7 days, once
// a day at 03:00 local time.
func (s *RepairService) StartNightlySweep() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}
			time.Sleep(time.Until(next))

			log.Println("starting nightly aggregate sweep...")
			n := s.sweepRecent()
			log.Printf("nightly aggregate sweep done, %d targets recounted", n)
		}
	}()
}

func (s *RepairService) sweepRecent() int {
	cutoff := time.Now().AddDate(0, 0, -7)
	count := 0

	var votes []models.Vote
	db.DB.Where("updated_at >= ?", cutoff).Find(&votes)

	seen := make(map[repairTarget]bool)
	for _, v := range votes {
		var t repairTarget
		switch {
		case v.PlaceID != nil:
			t = repairTarget{Type: VotablePlace, ID: *v.PlaceID}
		case v.PlaybookID != nil:
			t = repairTarget{Type: VotablePlaybook, ID: *v.PlaybookID}
		default:
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		s.repairOne(t)
		count++
	}
	return count
}
