package quiz

import "math/rand"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TimeLimit returns the advisory countdown budget in seconds. The countdown
// never forces a submission; overtime only erodes the session speed bonus.
func (d Difficulty) TimeLimit() int {
	switch d {
	case DifficultyEasy:
		return 45
	case DifficultyHard:
		return 120
	default:
		return 90
	}
}

// Question is one free-text prompt from the verification pool. Keywords feed
// the quality bonus during scoring.
type Question struct {
	ID         int        `json:"id"`
	Prompt     string     `json:"prompt"`
	Difficulty Difficulty `json:"difficulty"`
	Keywords   []string   `json:"keywords"`
}

// TimeLimit returns the question's countdown budget in seconds.
func (q Question) TimeLimit() int {
	return q.Difficulty.TimeLimit()
}

// QuestionsPerSession is how many questions a verification session draws from
// the pool, without replacement.
const QuestionsPerSession = 3

// DefaultPool returns the fixed verification question pool.
func DefaultPool() []Question {
	return []Question{
		{
			ID:         1,
			Prompt:     "Describe one change that would make your campus more sustainable and explain how you would measure its impact.",
			Difficulty: DifficultyHard,
			Keywords:   []string{"sustainability", "recycle", "energy", "waste", "solar"},
		},
		{
			ID:         2,
			Prompt:     "What does innovation mean to you? Give an example from your own school life.",
			Difficulty: DifficultyMedium,
			Keywords:   []string{"innovation", "idea", "create", "improve", "solution"},
		},
		{
			ID:         3,
			Prompt:     "Explain how teamwork helped you finish a recent project.",
			Difficulty: DifficultyEasy,
			Keywords:   []string{"team", "collaborate", "share", "help", "together"},
		},
		{
			ID:         4,
			Prompt:     "Pick a technology you use every day and describe how you would improve it.",
			Difficulty: DifficultyMedium,
			Keywords:   []string{"technology", "design", "improve", "user", "problem"},
		},
		{
			ID:         5,
			Prompt:     "If you could run one initiative to help younger students, what would it be and why?",
			Difficulty: DifficultyMedium,
			Keywords:   []string{"mentor", "initiative", "help", "plan", "community"},
		},
		{
			ID:         6,
			Prompt:     "Describe a mistake you made this year and what it taught you.",
			Difficulty: DifficultyEasy,
			Keywords:   []string{"learn", "mistake", "improve", "reflect", "change"},
		},
		{
			ID:         7,
			Prompt:     "How would you reduce food waste in the school cafeteria? Outline concrete steps.",
			Difficulty: DifficultyHard,
			Keywords:   []string{"waste", "food", "plan", "measure", "reduce"},
		},
		{
			ID:         8,
			Prompt:     "What subject do you find hardest, and what strategy are you using to get better at it?",
			Difficulty: DifficultyEasy,
			Keywords:   []string{"study", "practice", "strategy", "goal", "progress"},
		},
	}
}

// SelectQuestions draws a session's questions from the pool: a full random
// permutation, then the leading QuestionsPerSession entries. The pool is not
// mutated. Pools smaller than a session yield the whole pool.
func SelectQuestions(pool []Question, rng *rand.Rand) []Question {
	shuffled := make([]Question, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := QuestionsPerSession
	if len(shuffled) < n {
		n = len(shuffled)
	}
	return shuffled[:n]
}
