package services

// evaluatedAnswer is one submission answer after grading against the answer
// key, ready for persistence and statistics folding.
type evaluatedAnswer struct {
	QuestionID        uint
	SelectedOptionIDs []uint
	ResponseTimeSec   float64
	Correct           bool
}

// isExactMatch reports whether the selected option set equals the correct
// option set. Grading is all-or-nothing: no partial credit, no order
// sensitivity. A question with an empty answer key can never be answered
// correctly, and option ids from other questions simply break equality.
func isExactMatch(selected, correct []uint) bool {
	if len(correct) == 0 {
		return false
	}

	selectedSet := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}

	if len(selectedSet) != len(correct) {
		return false
	}
	for _, id := range correct {
		if _, ok := selectedSet[id]; !ok {
			return false
		}
	}
	return true
}

// countCorrect is the raw score: the number of correctly answered questions.
func countCorrect(evaluated []evaluatedAnswer) int {
	count := 0
	for _, ans := range evaluated {
		if ans.Correct {
			count++
		}
	}
	return count
}

// standardizeScore applies the linear norm-comparison transform to the raw
// score. The scale is configuration; the platform convention is 10 points per
// correct answer.
func standardizeScore(rawScore int, scale float64) float64 {
	return float64(rawScore) * scale
}
