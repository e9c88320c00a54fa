package study

import (
	"strings"
	"time"
)

// TopicMastery summarizes how often a topic has appeared in the session's
// generated notes and how recently.
type TopicMastery struct {
	Score       float64
	Attempts    int
	LastUpdated time.Time
}

// MasteryByTopic derives per-topic mastery from the notes generated so far.
// Each notes entry carrying a topic label counts as one attempt for that
// topic; the score climbs toward 1.0 as a topic keeps reappearing. Returns
// nil when no notes carry labels yet.
func MasteryByTopic(notes []PageNotes) map[string]TopicMastery {
	mastery := make(map[string]TopicMastery)
	for _, entry := range notes {
		for _, label := range entry.TopicLabels {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			m := mastery[label]
			m.Attempts++
			m.Score = float64(m.Attempts) / float64(m.Attempts+2)
			if entry.GeneratedAt.After(m.LastUpdated) {
				m.LastUpdated = entry.GeneratedAt
			}
			mastery[label] = m
		}
	}
	if len(mastery) == 0 {
		return nil
	}
	return mastery
}
