package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultSnippetLen = 400

// BodySummarizer reduces upstream response bodies to short, log-friendly snippets.
// HTML error pages from proxies and gateways are collapsed to their visible text.
type BodySummarizer struct {
	maxLen          int
	whitespaceRegex *regexp.Regexp
	htmlRegex       *regexp.Regexp
}

// NewBodySummarizer creates a summarizer that keeps at most maxLen characters
func NewBodySummarizer(maxLen int) *BodySummarizer {
	if maxLen <= 0 {
		maxLen = defaultSnippetLen
	}
	return &BodySummarizer{
		maxLen:          maxLen,
		whitespaceRegex: regexp.MustCompile(`\s+`),
		htmlRegex:       regexp.MustCompile(`(?i)^\s*(<!doctype html|<html|<head|<body)`),
	}
}

// Summarize returns a truncated, single-line rendition of body
func (s *BodySummarizer) Summarize(body []byte) string {
	text := string(body)
	if s.htmlRegex.MatchString(text) {
		if parsed, err := s.htmlText(text); err == nil && parsed != "" {
			text = parsed
		}
	}
	text = strings.TrimSpace(s.whitespaceRegex.ReplaceAllString(text, " "))
	return truncate(text, s.maxLen)
}

// htmlText extracts the title and visible body text of an HTML page
func (s *BodySummarizer) htmlText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, head, meta, link").Remove()
	body := strings.TrimSpace(doc.Find("body").Text())
	if body == "" {
		body = strings.TrimSpace(doc.Text())
	}

	switch {
	case title == "":
		return body, nil
	case body == "" || strings.HasPrefix(body, title):
		return title, nil
	default:
		return title + ": " + body, nil
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
