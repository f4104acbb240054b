package metadata

import "strings"

// MinConfidence is the lowest score accepted for an external match
const MinConfidence = 70

// Confidence scores how well a catalogue result matches a parsed title, 0..100.
// Without an artist the score is capped at 60.
func Confidence(parsedArtist, parsedSong, resultArtist, resultTitle string) int {
	parsedArtist = strings.ToLower(strings.TrimSpace(parsedArtist))
	parsedSong = strings.ToLower(strings.TrimSpace(parsedSong))
	resultArtist = strings.ToLower(strings.TrimSpace(resultArtist))
	resultTitle = strings.ToLower(strings.TrimSpace(resultTitle))

	titleSim := similarity(parsedSong, resultTitle)
	if parsedArtist == "" {
		return int(titleSim * 60)
	}

	artistSim := similarity(parsedArtist, resultArtist)
	return int((artistSim*0.4 + titleSim*0.6) * 100)
}

// similarity is 1 - levenshtein/maxLen over runes
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
