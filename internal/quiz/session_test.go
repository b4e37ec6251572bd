package quiz

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a clock that starts at a fixed instant and can be moved
// forward by the test.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestSelectQuestions(t *testing.T) {
	pool := DefaultPool()
	rng := rand.New(rand.NewSource(42))

	picked := SelectQuestions(pool, rng)
	require.Len(t, picked, QuestionsPerSession)

	// Without replacement: all distinct.
	seen := map[int]bool{}
	for _, q := range picked {
		assert.False(t, seen[q.ID], "question %d drawn twice", q.ID)
		seen[q.ID] = true
	}

	// The pool itself must not be reordered.
	for i, q := range DefaultPool() {
		assert.Equal(t, q.ID, pool[i].ID)
	}
}

func TestSelectQuestions_SmallPool(t *testing.T) {
	pool := DefaultPool()[:2]
	picked := SelectQuestions(pool, rand.New(rand.NewSource(1)))
	assert.Len(t, picked, 2)
}

func TestSession_HappyPath(t *testing.T) {
	clock := newFakeClock()
	questions := []Question{
		{ID: 1, Keywords: []string{"recycle"}},
		{ID: 2, Keywords: []string{"team"}},
		{ID: 3, Keywords: []string{"idea"}},
	}

	var completions []int
	s := NewSession(questions, clock.Now, func(total int) {
		completions = append(completions, total)
	})

	answers := []string{
		"We should recycle paper and plastic every single week.",
		"My team worked together on the science fair project.",
		"The best idea came from asking younger students directly.",
	}

	expected := 0
	for i, answer := range answers {
		clock.Advance(30 * time.Second)
		expected += Score(answer, questions[i])

		done, err := s.Submit(answer)
		require.NoError(t, err)
		assert.Equal(t, i == len(answers)-1, done)
	}

	// 90 seconds total elapsed.
	expected += SpeedBonus(90 * time.Second)

	total, ok := s.Total()
	require.True(t, ok)
	assert.Equal(t, expected, total)

	require.Len(t, completions, 1, "completion callback fires exactly once")
	assert.Equal(t, expected, completions[0])

	// Further submissions are rejected and do not re-fire the callback.
	_, err := s.Submit("one more answer that is clearly long enough")
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.Len(t, completions, 1)
}

func TestSession_RejectsShortAnswers(t *testing.T) {
	s := NewSession([]Question{{ID: 1}}, nil, nil)

	_, err := s.Submit("too short")
	assert.ErrorIs(t, err, ErrAnswerTooShort)

	_, err = s.Submit("   padded out with spaces   ")
	assert.NoError(t, err, "trimmed length above the gate is accepted")
}

func TestSession_FourteenCharsBlocked(t *testing.T) {
	// 14 trimmed characters: long enough to score, still blocked from
	// advancing. The two thresholds are distinct.
	answer := "fourteen chars"
	assert.Len(t, answer, 14)
	assert.NotEqual(t, 0, Score(answer, Question{ID: 1}))

	s := NewSession([]Question{{ID: 1}}, nil, nil)
	_, err := s.Submit(answer)
	assert.ErrorIs(t, err, ErrAnswerTooShort)

	answered, _ := s.Progress()
	assert.Equal(t, 0, answered)
}

func TestSession_GateCountsCharactersNotBytes(t *testing.T) {
	s := NewSession([]Question{{ID: 1}, {ID: 2}}, nil, nil)

	// 14 Arabic characters over 27 bytes: the gate refuses it.
	_, err := s.Submit("الطاقة الشمسية")
	assert.ErrorIs(t, err, ErrAnswerTooShort)
	answered, _ := s.Progress()
	assert.Equal(t, 0, answered)

	// 20 characters clears the gate regardless of byte width.
	_, err = s.Submit("الطاقة الشمسية نظيفة")
	assert.NoError(t, err)
}

func TestSession_SlowCompletionGetsNoSpeedBonus(t *testing.T) {
	clock := newFakeClock()
	s := NewSession([]Question{{ID: 1}}, clock.Now, nil)

	clock.Advance(11 * time.Minute)
	done, err := s.Submit("an answer that took far too long to write down")
	require.NoError(t, err)
	require.True(t, done)

	total, ok := s.Total()
	require.True(t, ok)
	assert.Equal(t, Score("an answer that took far too long to write down", Question{ID: 1}), total)
}

func TestSession_AbortDiscardsProgress(t *testing.T) {
	fired := false
	s := NewSession([]Question{{ID: 1}, {ID: 2}}, nil, func(int) { fired = true })

	_, err := s.Submit("a perfectly acceptable first answer")
	require.NoError(t, err)

	s.Abort()
	assert.True(t, s.Aborted())

	_, err = s.Submit("this answer should never be accepted")
	assert.ErrorIs(t, err, ErrSessionAborted)

	_, ok := s.Total()
	assert.False(t, ok, "aborted session yields no total")
	assert.False(t, fired, "no partial credit on abort")

	_, current := s.Current()
	assert.False(t, current)
}
