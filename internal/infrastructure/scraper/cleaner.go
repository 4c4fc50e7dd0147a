package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultMaxChars bounds the text handed to the price extractor
const DefaultMaxChars = 5000

// structuralNoise are elements that never carry search results
const structuralNoise = "script, style, nav, footer, header, noscript"

// noiseKeywords mark upsell blocks whose prices would confuse the extractor
var noiseKeywords = []string{
	"featured items",
	"recommended",
	"related",
	"similar products",
	"bought together",
	"you might be interested",
}

// literal escape sequences some retailers leave inside inline JSON blobs
var escapeReplacer = strings.NewReplacer(`\n`, " ", `\t`, " ")

// CleanPage reduces a search results page to a single-spaced text blob of at most maxChars runes.
// Upsell sections are removed; if that leaves nothing, the unstripped container text is used.
func CleanPage(body []byte, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find(structuralNoise).Remove()

	container := contentContainer(doc)
	stripped := container.Clone()
	stripped.Find("div, section").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return containsNoise(strings.ToLower(s.Text()))
	}).Remove()

	text := collapse(nodeText(stripped.Nodes))
	if text == "" {
		text = collapse(nodeText(container.Nodes))
	}

	return truncateRunes(text, maxChars), nil
}

// contentContainer picks #container, then <main>, then <body>
func contentContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"#container", "main", "body"} {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func containsNoise(text string) bool {
	for _, keyword := range noiseKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// nodeText joins every text node under nodes with a single space
func nodeText(nodes []*html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func collapse(text string) string {
	return strings.Join(strings.Fields(escapeReplacer.Replace(text)), " ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
