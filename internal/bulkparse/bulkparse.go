// Package bulkparse parses the semicolon-separated bulk-entry text
// format used for subject and mock-exam input. The grammar is
// Entry (";" Entry)* with Entry = Name ":" CommaList. Malformed entries
// are skipped, not fatal, and returned so callers can report them.
package bulkparse

import (
	"strconv"
	"strings"

	"studyhighway/backend/internal/model"
)

// SubjectEntry is one parsed subject with its topic names.
type SubjectEntry struct {
	Name   string
	Topics []string
}

// Subjects parses "Name:topic1,topic2;Name2:topic1" into subject
// entries. Entries without a name, a colon, or at least one topic are
// skipped and returned verbatim in the second value.
func Subjects(input string) ([]SubjectEntry, []string) {
	var entries []SubjectEntry
	var skipped []string

	for _, part := range splitEntries(input) {
		name, rest, ok := strings.Cut(part, ":")
		if !ok {
			skipped = append(skipped, part)
			continue
		}
		name = strings.TrimSpace(name)

		var topics []string
		for _, topic := range strings.Split(rest, ",") {
			if topic = strings.TrimSpace(topic); topic != "" {
				topics = append(topics, topic)
			}
		}
		if name == "" || len(topics) == 0 {
			skipped = append(skipped, part)
			continue
		}
		entries = append(entries, SubjectEntry{Name: name, Topics: topics})
	}
	return entries, skipped
}

// SimuladoResults parses "Subject:total,correct,time;..." into exam
// results. Entries with a missing field, a non-numeric field, a
// negative value, or correct > total are skipped and returned verbatim.
func SimuladoResults(input string) ([]model.SimuladoResult, []string) {
	var results []model.SimuladoResult
	var skipped []string

	for _, part := range splitEntries(input) {
		name, rest, ok := strings.Cut(part, ":")
		if !ok {
			skipped = append(skipped, part)
			continue
		}
		name = strings.TrimSpace(name)

		fields := strings.Split(rest, ",")
		if name == "" || len(fields) != 3 {
			skipped = append(skipped, part)
			continue
		}

		total, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		correct, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
		minutes, err3 := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			skipped = append(skipped, part)
			continue
		}
		if total < 0 || correct < 0 || minutes < 0 || correct > total {
			skipped = append(skipped, part)
			continue
		}

		results = append(results, model.SimuladoResult{
			Subject:          name,
			QuestionsTotal:   total,
			QuestionsCorrect: correct,
			TimeSpent:        minutes,
		})
	}
	return results, skipped
}

func splitEntries(input string) []string {
	parts := strings.Split(input, ";")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}
