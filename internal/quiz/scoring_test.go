package quiz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sustainabilityQuestion() Question {
	return Question{
		ID:         1,
		Prompt:     "Describe one change that would make your campus more sustainable.",
		Difficulty: DifficultyHard,
		Keywords:   []string{"sustainability", "recycle", "energy", "waste", "solar"},
	}
}

func TestScore_Deterministic(t *testing.T) {
	q := sustainabilityQuestion()
	answer := "We should recycle paper and install solar panels on campus."

	first := Score(answer, q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(answer, q), "score must be a pure function")
	}
}

func TestScore_Breakdown(t *testing.T) {
	q := sustainabilityQuestion()

	// 59 chars, 10 words, 2 keyword hits (recycle, solar):
	// 59*2 + 10*10 + 2*200 = 618
	answer := "We should recycle paper and install solar panels on campus."
	assert.Equal(t, 618, Score(answer, q))
}

func TestScore_ShortAnswerFloor(t *testing.T) {
	q := sustainabilityQuestion()

	assert.Equal(t, 0, Score("", q))
	assert.Equal(t, 0, Score("too short", q), "9 trimmed chars score zero")
	assert.Equal(t, 0, Score("   recycle   ", q), "whitespace does not count toward the floor")
	assert.NotEqual(t, 0, Score("recycle it", q), "10 trimmed chars clear the floor")
}

func TestScore_CountsCharactersNotBytes(t *testing.T) {
	q := Question{ID: 7, Keywords: nil}

	// 8 Arabic characters spread over 15 bytes: still under the floor.
	assert.Equal(t, 0, Score("شمس طاقة", q))

	// 14 characters, 2 words: 14*2 + 2*10.
	assert.Equal(t, 48, Score("الطاقة الشمسية", q))
}

func TestScore_AIPhraseZeroesEverything(t *testing.T) {
	q := sustainabilityQuestion()

	cases := []string{
		"As an AI, I believe recycling matters a great deal.",
		"as a language model I would suggest solar energy programs.",
		"Recycling is useful. Furthermore, solar panels reduce energy waste.",
		"Moreover, the campus should recycle more paper every week.",
		"In conclusion, sustainability is the answer to our waste problem.",
		"It is important to note that energy use keeps rising every year.",
	}
	for _, answer := range cases {
		assert.Equal(t, 0, Score(answer, q), "answer %q should trip the filter", answer)
	}

	// Regression: a keyword match must not rescue a flagged answer.
	flagged := "I think furthermore we should improve campus sustainability"
	assert.True(t, ContainsAIPhrase(flagged))
	assert.Equal(t, 0, Score(flagged, q))
}

func TestScore_LengthBonusCapped(t *testing.T) {
	q := Question{ID: 99, Keywords: nil}

	// 300 chars, 1 word: capped length bonus 500 + word bonus 10.
	answer := strings.Repeat("a", 300)
	assert.Equal(t, 510, Score(answer, q))
}

func TestScore_WordBonusCapped(t *testing.T) {
	q := Question{ID: 99, Keywords: nil}

	// 60 words, 179 trimmed chars: 179*2 + capped 500.
	answer := strings.Repeat("go ", 60)
	assert.Equal(t, 358+500, Score(answer, q))
}

func TestScore_KeywordMatching(t *testing.T) {
	q := Question{
		ID:       5,
		Keywords: []string{"Solar", "solar", "ENERGY", "waste", ""},
	}

	// "solar" listed twice counts once; matching is case-insensitive.
	answer := "Install SOLAR panels to save energy on campus."
	// 46 chars, 8 words, 2 distinct keyword hits.
	assert.Equal(t, 46*2+8*10+2*200, Score(answer, q))
}

func TestSpeedBonus(t *testing.T) {
	assert.Equal(t, 500, SpeedBonus(0))
	assert.Equal(t, 440, SpeedBonus(60*time.Second))
	assert.Equal(t, 1, SpeedBonus(499*time.Second))
	assert.Equal(t, 0, SpeedBonus(500*time.Second))
	assert.Equal(t, 0, SpeedBonus(2*time.Hour), "bonus is never negative")
}

func TestDifficultyTimeLimits(t *testing.T) {
	assert.Equal(t, 45, DifficultyEasy.TimeLimit())
	assert.Equal(t, 90, DifficultyMedium.TimeLimit())
	assert.Equal(t, 120, DifficultyHard.TimeLimit())
}
