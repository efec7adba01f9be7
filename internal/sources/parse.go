package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// matchesKeywords reports whether any query keyword appears in the haystack,
// case-insensitively. An empty keyword list matches everything.
func matchesKeywords(haystack string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(haystack)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// stripTags renders HTML content down to plain text. Board APIs ship job
// descriptions as HTML fragments.
func stripTags(html string) string {
	if !strings.Contains(html, "<") {
		return strings.TrimSpace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}

// requirementCues mark lines that read like requirements rather than perks
// or company boilerplate.
var requirementCues = []string{
	"experience", "required", "requirement", "must have", "proficien",
	"familiar", "knowledge of", "degree", "years", "strong", "expertise",
}

// extractRequirementLines pulls the requirement-looking lines out of a plain
// text description. Best effort: an empty result is valid.
func extractRequirementLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*"))
		if line == "" || len(line) > 300 {
			continue
		}
		lower := strings.ToLower(line)
		for _, cue := range requirementCues {
			if strings.Contains(lower, cue) {
				out = append(out, line)
				break
			}
		}
		if len(out) >= 20 {
			break
		}
	}
	return out
}

// htmlListItems extracts the text of each <li> in an HTML fragment.
func htmlListItems(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<ul>" + html + "</ul>"))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := cleanText(li.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// cleanText collapses interior whitespace runs into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
