package game

import "ytbrain/internal/models"

// GameResult is one per-question outcome reported by the client at the end
// of a run.
type GameResult struct {
	ID         int    `json:"id"`
	Correct    bool   `json:"correct"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Level thresholds, in XP.
const (
	levelThinker = 50
	levelAnalyst = 150
	levelMaster  = 300
)

// MaxQuizXP is the best possible reward for a quiz of the given size under
// the difficulty split of DifficultyCounts.
func MaxQuizXP(size int, xp XPConfig) int {
	easy, medium, hard := DifficultyCounts(size)
	return easy*xp.Easy + medium*xp.Medium + hard*xp.Hard
}

// Complete turns a finished run into the level / comprehension
// acknowledgement. maxXP <= 0 disables the comprehension percentage.
func Complete(totalXP, maxXP int, results []GameResult) models.GameCompletion {
	level := "Listener"
	switch {
	case totalXP >= levelMaster:
		level = "Master"
	case totalXP >= levelAnalyst:
		level = "Analyst"
	case totalXP >= levelThinker:
		level = "Thinker"
	}

	var comprehension float64
	if maxXP > 0 {
		comprehension = float64(totalXP) / float64(maxXP) * 100
		if comprehension > 100 {
			comprehension = 100
		}
		if comprehension < 0 {
			comprehension = 0
		}
	}

	return models.GameCompletion{
		Level:              level,
		XP:                 totalXP,
		ComprehensionScore: comprehension,
		WeakestConcept:     weakestTier(results),
	}
}

// weakestTier names the difficulty tier with the most misses, if any.
func weakestTier(results []GameResult) string {
	misses := map[string]int{}
	for _, r := range results {
		if !r.Correct && r.Difficulty != "" {
			misses[r.Difficulty]++
		}
	}
	worst, worstCount := "", 0
	for _, tier := range []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		if misses[tier] > worstCount {
			worst, worstCount = tier, misses[tier]
		}
	}
	if worst == "" {
		return ""
	}
	return worst + " questions"
}
