package match

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// stopWords are common English words that add noise to keyword matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "years": true,
	"experience": true, "required": true, "preferred": true, "strong": true,
}

// skillAliases folds skill spellings onto one canonical form before
// comparison.
var skillAliases = map[string]string{
	"golang":     "go",
	"js":         "javascript",
	"ts":         "typescript",
	"node":       "node.js",
	"nodejs":     "node.js",
	"postgres":   "postgresql",
	"k8s":        "kubernetes",
	"ml":         "machine learning",
	"ai":         "machine learning",
	"tf":         "tensorflow",
	"py":         "python",
	"reactjs":    "react",
	"react.js":   "react",
	"gcp":        "google cloud",
	"amazon web services": "aws",
}

// NormalizeSkill lowercases, trims, and resolves aliases.
func NormalizeSkill(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if canonical, ok := skillAliases[s]; ok {
		return canonical
	}
	return s
}

// Tokenize splits text into lowercase keywords, skipping stop words.
// Adjacent words are also emitted as two- and three-word phrases so that
// multi-word skills like "machine learning" match when spelled out.
// Preserves tech suffixes like "c++", "c#", and "node.js" by treating
// + # . as word characters.
func Tokenize(text string) map[string]bool {
	var words []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w != "" {
			words = append(words, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	kw := make(map[string]bool, len(words))
	for i, w := range words {
		if len([]rune(w)) >= 2 && !stopWords[w] {
			kw[NormalizeSkill(w)] = true
		}
		if i+1 < len(words) {
			kw[NormalizeSkill(words[i]+" "+words[i+1])] = true
		}
		if i+2 < len(words) {
			kw[NormalizeSkill(words[i]+" "+words[i+1]+" "+words[i+2])] = true
		}
	}
	return kw
}

// SkillScore is the fraction of the profile's skills found in the posting
// text, capped at 1. An empty profile skill set scores 0.
func SkillScore(profileSkills []string, postingTokens map[string]bool) float64 {
	if len(profileSkills) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(profileSkills))
	matched := 0
	for _, raw := range profileSkills {
		skill := NormalizeSkill(raw)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		if postingTokens[skill] {
			matched++
		}
	}

	score := float64(matched) / float64(len(seen))
	if score > 1 {
		score = 1
	}
	return score
}

// yearsPattern matches requirement phrasings like "5+ years", "3 years",
// and "3-5 years". The first number is the minimum.
var yearsPattern = regexp.MustCompile(`(\d{1,2})(?:\s*[-–]\s*\d{1,2})?\s*\+?\s*(?:years?|yrs?)`)

// RequiredYears mines the minimum years-of-experience requirement from
// posting text. Returns 0 when no requirement is found.
func RequiredYears(text string) float64 {
	m := yearsPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil || years <= 0 || years > 30 {
		return 0
	}
	return float64(years)
}

// ExperienceScore is 1.0 when the posting states no requirement or the
// profile meets it, and ramps linearly from 0 to 1 below the requirement.
func ExperienceScore(profileYears, requiredYears float64) float64 {
	if requiredYears <= 0 || profileYears >= requiredYears {
		return 1
	}
	if profileYears <= 0 {
		return 0
	}
	return profileYears / requiredYears
}
