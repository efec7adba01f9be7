package platform

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobpilot/internal/types"
)

// ParseFormFields extracts fillable inputs from rendered HTML. It looks at
// inputs, textareas, and file uploads inside and outside <form> tags;
// single-page apply flows often render fields without a form element.
func ParseFormFields(html string) ([]FormField, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse form html: %w", err)
	}

	labels := collectLabels(doc)

	var fields []FormField
	doc.Find("input, textarea").Each(func(_ int, el *goquery.Selection) {
		typ, _ := el.Attr("type")
		if el.Is("textarea") {
			typ = "textarea"
		}
		switch typ {
		case "hidden", "submit", "button", "checkbox", "radio":
			return
		case "":
			typ = "text"
		}

		name, _ := el.Attr("name")
		id, _ := el.Attr("id")
		placeholder, _ := el.Attr("placeholder")
		_, required := el.Attr("required")
		ariaRequired, _ := el.Attr("aria-required")

		field := FormField{
			Name:        name,
			ID:          id,
			Label:       labels[id],
			Placeholder: placeholder,
			Type:        typ,
			Required:    required || ariaRequired == "true",
		}
		field.Selector = selectorFor(field)
		if field.Selector == "" {
			return
		}
		fields = append(fields, field)
	})
	return fields, nil
}

// collectLabels maps input ids to their <label> text.
func collectLabels(doc *goquery.Document) map[string]string {
	labels := make(map[string]string)
	doc.Find("label[for]").Each(func(_ int, l *goquery.Selection) {
		forID, _ := l.Attr("for")
		if forID != "" {
			labels[forID] = strings.TrimSpace(l.Text())
		}
	})
	return labels
}

// selectorFor builds a CSS selector addressing one field. Id beats name;
// fields with neither cannot be addressed reliably and are dropped.
func selectorFor(f FormField) string {
	if f.ID != "" {
		return "#" + cssEscape(f.ID)
	}
	if f.Name != "" {
		tag := "input"
		if f.Type == "textarea" {
			tag = "textarea"
		}
		return fmt.Sprintf(`%s[name=%q]`, tag, f.Name)
	}
	return ""
}

// cssEscape handles the characters ATS-generated ids commonly contain.
func cssEscape(id string) string {
	r := strings.NewReplacer(":", "\\:", ".", "\\.", "[", "\\[", "]", "\\]")
	return r.Replace(id)
}

// purposeSynonyms map a profile slot to the label/name/placeholder fragments
// that identify it on real forms.
var purposeSynonyms = map[string][]string{
	"first_name":   {"first name", "first_name", "first-name", "firstname", "given name", "given-name"},
	"last_name":    {"last name", "last_name", "last-name", "lastname", "family name", "surname"},
	"name":         {"full name", "your name", "name"},
	"email":        {"email", "e-mail"},
	"phone":        {"phone", "mobile", "tel"},
	"resume":       {"resume", "résumé", "cv", "curriculum"},
	"cover_letter": {"cover letter", "cover_letter", "cover-letter", "coverletter", "motivation"},
}

// purposeOrder fixes the matching precedence: specific slots claim fields
// before the catch-all "name".
var purposeOrder = []string{"first_name", "last_name", "email", "phone", "resume", "cover_letter", "name"}

// MapProfile maps profile values onto discovered fields by label, name, id,
// and placeholder heuristics. Each purpose claims at most one field; each
// field is claimed at most once. Required fields nothing claimed are
// recorded as unmapped, which the caller surfaces but does not block on.
func MapProfile(fields []FormField, profile *types.Profile) *FieldMap {
	fm := &FieldMap{}
	claimed := make(map[int]bool)

	for _, purpose := range purposeOrder {
		value, upload, ok := profileValue(purpose, profile)
		if !ok {
			continue
		}
		idx := findField(fields, claimed, purpose)
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		fm.Mapped = append(fm.Mapped, MappedField{
			Field:    fields[idx],
			Purpose:  purpose,
			Value:    value,
			Upload:   upload,
			Critical: purpose == "email" || purpose == "resume",
		})
	}

	for i, f := range fields {
		if f.Required && !claimed[i] {
			fm.UnmappedRequired = append(fm.UnmappedRequired, f)
		}
	}
	return fm
}

// findField locates the best unclaimed field for a purpose. Type matches
// win outright (email/tel/file inputs declare themselves); otherwise the
// synonyms scan labels, names, ids, and placeholders.
func findField(fields []FormField, claimed map[int]bool, purpose string) int {
	for i, f := range fields {
		if claimed[i] {
			continue
		}
		switch {
		case purpose == "email" && f.Type == "email":
			return i
		case purpose == "phone" && f.Type == "tel":
			return i
		case purpose == "resume" && f.Type == "file" && !mentions(f, "cover"):
			return i
		case purpose == "cover_letter" && f.Type == "file" && mentions(f, "cover"):
			return i
		}
	}

	for i, f := range fields {
		if claimed[i] {
			continue
		}
		if (purpose == "resume" || purpose == "cover_letter") && f.Type != "file" && f.Type != "textarea" {
			continue
		}
		for _, syn := range purposeSynonyms[purpose] {
			if mentions(f, syn) {
				return i
			}
		}
	}
	return -1
}

// mentions checks a synonym against every identifying attribute of a field.
func mentions(f FormField, syn string) bool {
	syn = strings.ToLower(syn)
	for _, hay := range []string{f.Label, f.Name, f.ID, f.Placeholder} {
		if hay == "" {
			continue
		}
		if strings.Contains(strings.ToLower(hay), syn) {
			return true
		}
	}
	return false
}

// profileValue resolves a purpose to the profile's value for it.
func profileValue(purpose string, p *types.Profile) (value string, upload bool, ok bool) {
	switch purpose {
	case "name":
		return p.Name, false, p.Name != ""
	case "first_name":
		first, _ := splitName(p.Name)
		return first, false, first != ""
	case "last_name":
		_, last := splitName(p.Name)
		return last, false, last != ""
	case "email":
		return p.Email, false, p.Email != ""
	case "phone":
		return p.Phone, false, p.Phone != ""
	case "resume":
		if p.Resume == nil {
			return "", false, false
		}
		return p.Resume.Path, true, p.Resume.Path != ""
	case "cover_letter":
		if p.CoverLetter == nil {
			return "", false, false
		}
		return p.CoverLetter.Path, true, p.CoverLetter.Path != ""
	}
	return "", false, false
}

// splitName separates a display name into first and last parts.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
