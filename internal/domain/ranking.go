package domain

import (
	"math"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreWordMatch      = 40.0
	ScoreFuzzyMatch     = 25.0

	// Earlier substring matches get up to this much extra
	ScorePositionBonus = 10.0

	// Usage weight (saves to a page contribute to its final score)
	ScoreUsageWeight = 0.1

	// Added to pages the user marked as favorite
	ScoreFavoriteBonus = 30.0
)

// DestinationCandidate is a page with its match score.
type DestinationCandidate struct {
	Destination  Destination
	LexicalScore float64
	UsageScore   float64
	Favorite     bool
	TotalScore   float64
}

// ScoreDestination scores a page title against a picker query.
func ScoreDestination(query string, name string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	name = strings.ToLower(strings.TrimSpace(name))
	if query == "" || name == "" {
		return 0.0
	}

	if query == name {
		return ScoreExactMatch
	}

	if strings.HasPrefix(name, query) {
		return ScorePrefixMatch
	}

	if index := strings.Index(name, query); index >= 0 {
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(name)))
		return ScoreSubstringMatch + substringBonus
	}

	// Every query word somewhere in the title
	if words := strings.Fields(query); len(words) > 1 {
		allMatch := true
		for _, word := range words {
			if !strings.Contains(name, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreWordMatch
		}
	}

	if similarity := calculateSimilarity(query, name); similarity > 0.7 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// calculateSimilarity is the share of query runes found in target.
func calculateSimilarity(query, target string) float64 {
	if query == "" || target == "" {
		return 0.0
	}

	runes := []rune(query)
	matches := 0
	for _, c := range runes {
		if strings.ContainsRune(target, c) {
			matches++
		}
	}
	return float64(matches) / float64(len(runes))
}

// RankDestinations filters pages by query and orders them best first.
// usage maps destination IDs to past save counts and favorites lists the
// pages that get ScoreFavoriteBonus; both may be nil. Favorites are still
// filtered by the query. An empty query keeps every page and orders by
// favorites and usage only, keeping the original order between equals.
func RankDestinations(query string, pages []Destination, usage map[string]int, favorites []string) []DestinationCandidate {
	candidates := make([]DestinationCandidate, 0, len(pages))
	blank := strings.TrimSpace(query) == ""
	favorite := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		favorite[id] = true
	}

	for _, page := range pages {
		lexical := 0.0
		if !blank {
			lexical = ScoreDestination(query, page.Name)
			if lexical == 0.0 {
				continue
			}
		}

		usageScore := 0.0
		if n := usage[page.ID]; n > 0 {
			usageScore = math.Log10(float64(n)+1) * ScoreUsageWeight * 100
		}

		total := lexical + usageScore
		if favorite[page.ID] {
			total += ScoreFavoriteBonus
		}

		candidates = append(candidates, DestinationCandidate{
			Destination:  page,
			LexicalScore: lexical,
			UsageScore:   usageScore,
			Favorite:     favorite[page.ID],
			TotalScore:   total,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalScore > candidates[j].TotalScore
	})
	return candidates
}

// FilterDestinations is RankDestinations without the scores.
func FilterDestinations(query string, pages []Destination, usage map[string]int, favorites []string) []Destination {
	ranked := RankDestinations(query, pages, usage, favorites)
	out := make([]Destination, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, c.Destination)
	}
	return out
}
