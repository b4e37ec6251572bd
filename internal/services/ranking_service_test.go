package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexlearn/campus-rewards/internal/cache"
)

func newTestRankings(repo *memRepo) RankingService {
	return NewRankingService(repo, cache.NoopCache{}, testLogger())
}

func TestRankingsExcludeUnverified(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("alice", 500, true)
	repo.addStudent("bob", 900, true)
	repo.addStudent("carol", 9999, false) // unverified, never ranked

	svc := newTestRankings(repo)
	rankings, err := svc.GetRankings(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, rankings, 2)
	assert.Equal(t, "bob", rankings[0].StudentID)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, "alice", rankings[1].StudentID)
	assert.Equal(t, 2, rankings[1].Rank)
}

func TestRankingsFilterByGrade(t *testing.T) {
	repo := newMemRepo()
	a := repo.addStudent("alice", 500, true)
	b := repo.addStudent("bob", 900, true)
	a.Grade = 10
	b.Grade = 9

	svc := newTestRankings(repo)
	grade := 10
	rankings, err := svc.GetRankings(context.Background(), &grade, nil)
	require.NoError(t, err)

	// Ranks restart within the narrowed pool.
	require.Len(t, rankings, 1)
	assert.Equal(t, "alice", rankings[0].StudentID)
	assert.Equal(t, 1, rankings[0].Rank)
}

func TestStudentRank(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("alice", 500, true)
	repo.addStudent("bob", 900, true)

	svc := newTestRankings(repo)
	rank, err := svc.GetStudentRank(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "2", rank.CampusRank)
	// No class assignment, no class standing.
	assert.Equal(t, RankUnknown, rank.ClassRank)
}

func TestStudentRankWithinClass(t *testing.T) {
	repo := newMemRepo()
	classA, classB := "9A", "9B"
	repo.addStudent("alice", 500, true).ClassID = &classA
	repo.addStudent("bob", 900, true).ClassID = &classB
	repo.addStudent("dana", 700, true).ClassID = &classA

	svc := newTestRankings(repo)
	rank, err := svc.GetStudentRank(context.Background(), "alice")
	require.NoError(t, err)

	// Third on campus, second in 9A: bob's class does not count.
	assert.Equal(t, "3", rank.CampusRank)
	assert.Equal(t, "2", rank.ClassRank)
}

func TestLockedStudentRankIsWithheld(t *testing.T) {
	repo := newMemRepo()
	p := repo.addStudent("alice", 900, true)
	p.QuizLocked = true

	svc := newTestRankings(repo)
	rank, err := svc.GetStudentRank(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, RankUnknown, rank.CampusRank)
	assert.Equal(t, RankUnknown, rank.ClassRank)
}

func TestUnverifiedStudentRankIsUnknown(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("alice", 900, false)

	svc := newTestRankings(repo)
	rank, err := svc.GetStudentRank(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, RankUnknown, rank.CampusRank)
}

func TestStudentRankUnknownStudent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestRankings(repo)
	_, err := svc.GetStudentRank(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotAStudent)
}
