// Package cleaner strips navigation, bylines, and paywall boilerplate
// from scraped article text.
package cleaner

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe  = regexp.MustCompile(`<[^>]+>`)
	locationRe = regexp.MustCompile(`^[A-Z]{3,}[,:]`)
	dateRe     = regexp.MustCompile(`^(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)
	timeRe     = regexp.MustCompile(`^\d{1,2}:\d{2}\s*(?:am|pm|AM|PM)(?:\s*IST)?`)
	bylineRe   = regexp.MustCompile(`^By\s+[A-Za-z.\s]+|^(?:Special Correspondent|Staff Reporter)`)
	bureauRe   = regexp.MustCompile(`^(Bureau|Correspondent)$`)

	hinduSuffixRe = regexp.MustCompile(`\s+-\s+The Hindu`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	multiPeriodRe = regexp.MustCompile(`\.{2,}`)
	spaceCommaRe  = regexp.MustCompile(`\s+,`)
	spacePeriodRe = regexp.MustCompile(`\s+\.`)
)

// navKeywords mark lines that belong to site chrome, not the article body.
// Matched as lowercase substrings, same as the site's own section labels.
var navKeywords = []string{
	"home", "news", "sections", "next story", "previous story",
	"related topics", "comments", "share", "print", "privacy policy",
	"terms of use", "copyright", "all rights reserved",
	"advertisement", "subscribe now", "sign up", "login",
	"read more", "follow us", "stay updated",
}

// paywallKeywords end processing: everything after them is teaser chrome.
var paywallKeywords = []string{
	"paywall", "subscription", "subscribe", "sign in",
	"register", "already have an account",
}

// Clean removes non-article elements from raw scraped text. Input shorter
// than 20 characters is returned unchanged.
func Clean(raw string) string {
	if len(raw) < 20 {
		return raw
	}

	content := htmlTagRe.ReplaceAllString(raw, " ")

	// "READ LATER SEE ALL" splits teaser chrome from the body. Keep only
	// the tail when it carries real text.
	if strings.Contains(content, "READ LATER SEE ALL") {
		parts := strings.SplitN(content, "READ LATER SEE ALL", 2)
		if len(parts) > 1 && len(strings.Fields(strings.TrimSpace(parts[1]))) > 50 {
			content = strings.TrimSpace(parts[1])
		}
	} else if strings.Contains(content, "READ LATER") {
		parts := strings.SplitN(content, "READ LATER", 2)
		if len(parts) > 1 && len(strings.Fields(strings.TrimSpace(parts[1]))) > 50 {
			content = strings.TrimSpace(parts[1])
		}
	}

	// Leading dateline markers: location, date, time, byline.
	content = locationRe.ReplaceAllString(content, "")
	content = dateRe.ReplaceAllString(content, "")
	content = timeRe.ReplaceAllString(content, "")
	content = bylineRe.ReplaceAllString(content, "")

	var kept []string
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if containsAny(strings.ToLower(line), navKeywords) {
			continue
		}

		if locationRe.MatchString(line) || dateRe.MatchString(line) ||
			timeRe.MatchString(line) || bylineRe.MatchString(line) ||
			bureauRe.MatchString(line) {
			continue
		}

		if strings.Contains(line, "Photo Credit:") || strings.Contains(line, "File Photo:") {
			continue
		}

		if strings.Contains(line, "Premium") {
			continue
		}

		// Short lines near the top are navigation leftovers.
		if len(line) < 15 && i < 5 {
			continue
		}
		if len(strings.Fields(line)) <= 1 && i < 10 {
			continue
		}

		if containsAny(strings.ToLower(line), paywallKeywords) {
			break
		}

		kept = append(kept, line)
	}

	content = strings.Join(kept, "\n")

	content = strings.ReplaceAll(content, "READ LATER SEE ALL", "")
	content = strings.ReplaceAll(content, "READ LATER", "")
	content = strings.ReplaceAll(content, "SEE ALL", "")
	content = hinduSuffixRe.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "The Hindu Bureau", "")

	content = whitespaceRe.ReplaceAllString(content, " ")
	content = multiPeriodRe.ReplaceAllString(content, ".")
	content = spaceCommaRe.ReplaceAllString(content, ",")
	content = spacePeriodRe.ReplaceAllString(content, ".")

	return strings.TrimSpace(content)
}

// Truncate caps s at limit characters. The cut lands on a rune
// boundary, so multi-byte text (currency signs, Indic scripts) never
// ends in a mangled partial character.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
