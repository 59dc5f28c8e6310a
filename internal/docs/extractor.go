package docs

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// contentPattern matches class/id values that conventionally mark the main
// content region of a documentation page.
var contentPattern = regexp.MustCompile(`(?i)content|main|article|doc|markdown|prose`)

// blankLines matches runs of three or more newlines (two or more blank lines).
var blankLines = regexp.MustCompile(`\n{3,}`)

// Extractor converts raw page markup to normalized markdown text.
//
// Algorithm: strip non-content elements, pick the best candidate content
// region (explicit main/article, then a content-like class or id, then the
// whole body), convert that region to markdown keeping link targets inline
// and dropping images, then collapse excess blank lines.
type Extractor struct {
	conv *md.Converter
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	conv := md.NewConverter("", true, nil)

	// Images carry no text content worth indexing.
	conv.AddRules(md.Rule{
		Filter: []string{"img"},
		Replacement: func(_ string, _ *goquery.Selection, _ *md.Options) *string {
			return md.String("")
		},
	})

	return &Extractor{conv: conv}
}

// Extract returns the normalized text of a page, or "" when the page has no
// extractable content. Empty output means "page contributed nothing" and is
// never an error.
func (e *Extractor) Extract(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	region := pickContentRegion(doc)
	if region == nil || region.Length() == 0 {
		return ""
	}

	markdown := e.conv.Convert(region)
	markdown = blankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown)
}

// pickContentRegion selects the best candidate content region by priority:
// explicit <main>, then <article>, then the first element whose class or id
// looks content-like, then the full <body>.
func pickContentRegion(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("main").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}

	var candidate *goquery.Selection
	doc.Find("div, section").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if contentPattern.MatchString(class) || contentPattern.MatchString(id) {
			candidate = s
			return false
		}
		return true
	})
	if candidate != nil {
		return candidate
	}

	if sel := doc.Find("body"); sel.Length() > 0 {
		return sel
	}
	return nil
}
