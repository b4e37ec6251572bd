package quiz

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrAnswerTooShort is returned when an answer's trimmed length is below
	// MinAnswerLength. The session does not advance; the caller re-prompts.
	ErrAnswerTooShort = errors.New("answer must be at least 15 characters")

	ErrSessionCompleted = errors.New("session already completed")
	ErrSessionAborted   = errors.New("session aborted")
)

// Session runs one timed verification: a fixed question sequence, one
// free-text answer each, and a single cumulative total on completion.
//
// A session holds no persistence and is lost when abandoned; nothing is
// saved mid-quiz. The completion callback fires exactly once.
type Session struct {
	questions []Question
	scores    []int
	index     int

	startedAt time.Time
	now       func() time.Time

	completed bool
	aborted   bool
	total     int

	onComplete func(total int)
}

// NewSession starts a session over the given questions. clock may be nil for
// time.Now; onComplete may be nil.
func NewSession(questions []Question, clock func() time.Time, onComplete func(total int)) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		questions:  questions,
		scores:     make([]int, 0, len(questions)),
		startedAt:  clock(),
		now:        clock,
		onComplete: onComplete,
	}
}

// Current returns the question awaiting an answer, or false when none remains.
func (s *Session) Current() (Question, bool) {
	if s.completed || s.aborted || s.index >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Submit validates and scores the answer to the current question. The length
// gate runs before scoring: a refused answer leaves the session where it was.
// Answering the final question completes the session, adds the speed bonus
// and reports the total through the completion callback.
func (s *Session) Submit(answer string) (done bool, err error) {
	if s.aborted {
		return false, ErrSessionAborted
	}
	if s.completed {
		return false, ErrSessionCompleted
	}

	q, ok := s.Current()
	if !ok {
		return false, ErrSessionCompleted
	}

	if utf8.RuneCountInString(strings.TrimSpace(answer)) < MinAnswerLength {
		return false, ErrAnswerTooShort
	}

	s.scores = append(s.scores, Score(answer, q))
	s.index++

	if s.index < len(s.questions) {
		return false, nil
	}

	sum := 0
	for _, sc := range s.scores {
		sum += sc
	}
	s.total = sum + SpeedBonus(s.now().Sub(s.startedAt))
	s.completed = true

	if s.onComplete != nil {
		s.onComplete(s.total)
	}
	return true, nil
}

// Abort discards the session with no partial credit. Idempotent; a completed
// session cannot be aborted retroactively.
func (s *Session) Abort() {
	if !s.completed {
		s.aborted = true
	}
}

// Total returns the cumulative score, valid only once completed.
func (s *Session) Total() (int, bool) {
	return s.total, s.completed
}

// Progress reports answered and total question counts.
func (s *Session) Progress() (answered, total int) {
	return s.index, len(s.questions)
}

// Elapsed is the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return s.now().Sub(s.startedAt)
}

// Aborted reports whether the session was discarded.
func (s *Session) Aborted() bool {
	return s.aborted
}
