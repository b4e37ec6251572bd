package quiz

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinScorableLength is the trimmed length below which an answer scores 0.
	MinScorableLength = 10
	// MinAnswerLength is the trimmed length below which an answer is refused
	// outright and the session does not advance. Distinct from the scoring
	// floor above: a 12-character answer is refused, not scored.
	MinAnswerLength = 15

	lengthBonusCap  = 500
	wordBonusCap    = 500
	charBonusWeight = 2
	wordBonusWeight = 10
	keywordBonus    = 200

	// SpeedBonusBase is the ceiling of the once-per-session speed bonus; one
	// point is lost per elapsed second.
	SpeedBonusBase = 500
)

// aiPhrases are case-insensitive substrings that mark an answer as pasted
// model output. Any hit zeroes the answer regardless of length or keywords.
var aiPhrases = []string{
	"as an ai",
	"as a language model",
	"furthermore",
	"moreover",
	"in conclusion",
	"it is important to note",
}

// ContainsAIPhrase reports whether the answer trips the pasted-output filter.
func ContainsAIPhrase(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range aiPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Score rates a free-text answer against a question. Pure: fixed inputs
// always produce the same output.
//
// Answers under the scorable floor or containing an AI phrase score 0.
// Otherwise the score is a capped length bonus plus a capped word-count bonus
// plus 200 per distinct matched keyword; the keyword term is unbounded.
func Score(answer string, q Question) int {
	trimmed := strings.TrimSpace(answer)
	// Lengths count characters, not bytes; Arabic answers are multi-byte.
	chars := utf8.RuneCountInString(trimmed)
	if chars < MinScorableLength {
		return 0
	}
	if ContainsAIPhrase(trimmed) {
		return 0
	}

	score := 0

	if lengthBonus := chars * charBonusWeight; lengthBonus > lengthBonusCap {
		score += lengthBonusCap
	} else {
		score += lengthBonus
	}

	if wordBonus := len(strings.Fields(trimmed)) * wordBonusWeight; wordBonus > wordBonusCap {
		score += wordBonusCap
	} else {
		score += wordBonus
	}

	score += keywordBonus * matchedKeywords(trimmed, q.Keywords)

	return score
}

// matchedKeywords counts distinct keywords appearing as case-insensitive
// substrings of the answer. Duplicate keywords in the list count once.
func matchedKeywords(answer string, keywords []string) int {
	lower := strings.ToLower(answer)
	seen := make(map[string]struct{}, len(keywords))
	count := 0
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if strings.Contains(lower, k) {
			count++
		}
	}
	return count
}

// SpeedBonus converts total session time into the completion bonus:
// max(0, 500 - elapsedSeconds). Added once, at completion, never negative.
func SpeedBonus(elapsed time.Duration) int {
	secs := int(elapsed.Seconds())
	if secs >= SpeedBonusBase {
		return 0
	}
	if secs < 0 {
		secs = 0
	}
	return SpeedBonusBase - secs
}
