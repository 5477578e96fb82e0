package service

import (
	"math/rand"
	"time"
)

// ShuffleQuestions returns a shuffled copy; the input slice is left untouched.
func ShuffleQuestions(questions []string) []string {
	shuffled := make([]string, len(questions))
	copy(shuffled, questions)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

func snapshotQuestions(questions []string, shuffle bool) []string {
	if shuffle {
		return ShuffleQuestions(questions)
	}
	snapshot := make([]string, len(questions))
	copy(snapshot, questions)
	return snapshot
}
