package domain

import (
	"strconv"
	"sync"
	"time"
)

const (
	// HistoryLimit bounds the recent saves list.
	HistoryLimit = 50

	// PreviewLength is the number of runes kept in SaveRecord.TextPreview.
	PreviewLength = 80
)

// PrependRecord returns history with rec placed first. Records sharing rec's
// ID are dropped and the result never exceeds HistoryLimit entries.
func PrependRecord(history []SaveRecord, rec SaveRecord) []SaveRecord {
	out := make([]SaveRecord, 0, min(len(history)+1, HistoryLimit))
	out = append(out, rec)
	for _, existing := range history {
		if len(out) == HistoryLimit {
			break
		}
		if existing.ID == rec.ID {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// TextPreview shortens text to PreviewLength runes.
func TextPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength])
}

// RecordIDs issues SaveRecord IDs from the creation time in milliseconds.
// IDs are strictly increasing within one generator even when two saves land
// in the same millisecond.
type RecordIDs struct {
	mu   sync.Mutex
	last int64
}

// Next returns the ID for a record created at now.
func (g *RecordIDs) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// UsageByDestination counts saves per destination ID.
func UsageByDestination(history []SaveRecord) map[string]int {
	usage := make(map[string]int, len(history))
	for _, rec := range history {
		usage[rec.DestinationID]++
	}
	return usage
}
