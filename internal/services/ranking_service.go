package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/nexlearn/campus-rewards/internal/cache"
	"github.com/nexlearn/campus-rewards/internal/repositories"
)

// RankUnknown is shown instead of a position when a student's rank cannot be
// disclosed, a locked account in particular.
const RankUnknown = "?"

const (
	rankingCacheKey = "rankings:verified"
	rankingCacheTTL = 2 * time.Minute
)

// RankedStudent is one row of a ranking snapshot. Rank is 1-based.
type RankedStudent struct {
	StudentID string  `json:"student_id"`
	FullName  string  `json:"full_name"`
	Grade     int     `json:"grade"`
	ClassID   *string `json:"class_id,omitempty"`
	Points    int     `json:"points"`
	Rank      int     `json:"rank"`
}

// StudentRank is a student's standing on the campus-wide and class boards.
// Either position is RankUnknown when it cannot be disclosed.
type StudentRank struct {
	CampusRank string `json:"campus_rank"`
	ClassRank  string `json:"class_rank"`
}

// RankingService derives leaderboards from the ledger. Only quiz-verified
// students are ranked; everyone else simply does not appear.
type RankingService interface {
	// GetRankings returns the verified pool ordered by points descending.
	// grade and classID narrow the pool; ranks are recomputed within the
	// narrowed pool.
	GetRankings(ctx context.Context, grade *int, classID *string) ([]RankedStudent, error)
	// GetStudentRank returns the student's 1-based campus and class
	// positions, or RankUnknown where standing is withheld or the student
	// has no class.
	GetStudentRank(ctx context.Context, studentID string) (*StudentRank, error)

	RankingInvalidator
}

type rankingService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewRankingService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) RankingService {
	return &rankingService{repo: repo, cache: cacheService, logger: logger}
}

func (s *rankingService) GetRankings(ctx context.Context, grade *int, classID *string) ([]RankedStudent, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if grade == nil && classID == nil {
		return snapshot, nil
	}

	filtered := make([]RankedStudent, 0, len(snapshot))
	for _, r := range snapshot {
		if grade != nil && r.Grade != *grade {
			continue
		}
		if classID != nil && (r.ClassID == nil || *r.ClassID != *classID) {
			continue
		}
		filtered = append(filtered, r)
	}
	for i := range filtered {
		filtered[i].Rank = i + 1
	}
	return filtered, nil
}

func (s *rankingService) GetStudentRank(ctx context.Context, studentID string) (*StudentRank, error) {
	profile, err := s.repo.Users().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotAStudent
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	rank := &StudentRank{CampusRank: RankUnknown, ClassRank: RankUnknown}
	// A locked student's standing is withheld, not zeroed.
	if profile.QuizLocked || !profile.QuizVerified {
		return rank, nil
	}

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	classPos := 0
	for _, r := range snapshot {
		inClass := profile.ClassID != nil && r.ClassID != nil && *r.ClassID == *profile.ClassID
		if inClass {
			classPos++
		}
		if r.StudentID == studentID {
			rank.CampusRank = strconv.Itoa(r.Rank)
			if inClass {
				rank.ClassRank = strconv.Itoa(classPos)
			}
			break
		}
	}
	return rank, nil
}

func (s *rankingService) InvalidateRankings(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "rankings:*"); err != nil {
		s.logger.Warn("Failed to invalidate ranking cache", "error", err)
	}
}

// snapshot returns the full verified ranking, from cache when fresh.
func (s *rankingService) snapshot(ctx context.Context) ([]RankedStudent, error) {
	var cached []RankedStudent
	err := s.cache.Get(ctx, rankingCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Ranking cache read failed", "error", err)
	}

	profiles, err := s.repo.Users().ListVerifiedStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified students: %w", err)
	}

	snapshot := make([]RankedStudent, 0, len(profiles))
	for _, p := range profiles {
		snapshot = append(snapshot, RankedStudent{
			StudentID: p.UserID,
			FullName:  p.User.FullName,
			Grade:     p.Grade,
			ClassID:   p.ClassID,
			Points:    p.Points,
		})
	}
	// Ties break on student ID for a stable, reproducible order.
	sort.SliceStable(snapshot, func(i, j int) bool {
		if snapshot[i].Points != snapshot[j].Points {
			return snapshot[i].Points > snapshot[j].Points
		}
		return snapshot[i].StudentID < snapshot[j].StudentID
	})
	for i := range snapshot {
		snapshot[i].Rank = i + 1
	}

	if err := s.cache.Set(ctx, rankingCacheKey, snapshot, rankingCacheTTL); err != nil {
		s.logger.Warn("Failed to cache ranking snapshot", "error", err)
	}
	return snapshot, nil
}
