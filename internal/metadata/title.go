// Package metadata fills in song details that YouTube does not provide:
// artist and title split from video titles, Spotify album data and lyrics.
package metadata

import (
	"regexp"
	"strings"
)

// bracketNoise matches bracketed markers like "(Official Video)" or "[HD]"
var bracketNoise = regexp.MustCompile(`(?i)\s*[\(\[](official\s*(music\s*|lyric\s*)?video|official\s*audio|lyrics?\s*(video)?|audio|hd|hq|4k|music\s*video|lyric\s*video|mv|visuali[sz]er|video\s*oficial|clip\s*officiel|официальный\s*клип)[\)\]]`)

// trailingNoise matches the same markers after a dash or pipe
var trailingNoise = regexp.MustCompile(`(?i)\s*[-–—|]\s*(official\s*(music\s*)?video|official\s*audio|lyrics?\s*(video)?|audio|hd|hq|4k|music\s*video|mv|visuali[sz]er)\s*$`)

var topicSuffix = regexp.MustCompile(`(?i)\s*-\s*topic\s*$`)

var featPattern = regexp.MustCompile(`(?i)\s*\b(feat\.?|ft\.?|featuring)\s+`)

var titleDelimiters = []string{" - ", " – ", " — ", " | ", " ~ "}

// Artist "Song" with straight or curly quotes
var quotedPattern = regexp.MustCompile("^(.+?)\\s+[\"“](.+?)[\"”]$")

var byPattern = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)

var extraWhitespace = regexp.MustCompile(`\s{2,}`)

// ParseTitle splits a video title into artist and song. When no artist can
// be found, artist is empty and song is the cleaned title.
func ParseTitle(title string) (artist, song string) {
	cleaned := CleanTitle(title)

	for _, delim := range titleDelimiters {
		idx := strings.Index(cleaned, delim)
		if idx <= 0 {
			continue
		}
		a := strings.TrimSpace(topicSuffix.ReplaceAllString(cleaned[:idx], ""))
		s := strings.TrimSpace(cleaned[idx+len(delim):])
		if a != "" && s != "" {
			return normalizeFeat(a), normalizeFeat(s)
		}
	}

	if m := quotedPattern.FindStringSubmatch(cleaned); m != nil {
		a, s := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if a != "" && s != "" {
			return normalizeFeat(a), normalizeFeat(s)
		}
	}

	if m := byPattern.FindStringSubmatch(cleaned); m != nil {
		s, a := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if a != "" && s != "" {
			return normalizeFeat(a), normalizeFeat(s)
		}
	}

	return "", normalizeFeat(cleaned)
}

// CleanTitle removes video noise markers from a title
func CleanTitle(title string) string {
	s := bracketNoise.ReplaceAllString(title, "")
	s = trailingNoise.ReplaceAllString(s, "")
	s = topicSuffix.ReplaceAllString(s, "")
	s = extraWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func normalizeFeat(s string) string {
	return strings.TrimSpace(featPattern.ReplaceAllString(s, " feat. "))
}
