package attachment

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// ContentCase names the branch the content parser took.
type ContentCase string

const (
	// CaseObject is a JSON object carrying buttonText and buttonLink.
	CaseObject ContentCase = "object"
	// CaseLegacyHTML is a JSON string holding an HTML anchor.
	CaseLegacyHTML ContentCase = "legacy_html"
	// CaseDefault covers missing, blank and unparseable content.
	CaseDefault ContentCase = "default"
)

// ParseResult is the label and link recovered from fragment content.
type ParseResult struct {
	Label    string
	Target   string
	Case     ContentCase
	Warnings []Warning
}

// ContentParser reads fragment content. The zero value is not usable; build
// one with NewContentParser.
type ContentParser struct {
	markerSelector string
}

var defaultParser = NewContentParser()

// NewContentParser creates a parser that recognizes legacy anchors carrying
// any of the given marker classes. No classes means MarkerClass.
func NewContentParser(markerClasses ...string) ContentParser {
	if len(markerClasses) == 0 {
		markerClasses = []string{MarkerClass}
	}

	selectors := make([]string, 0, len(markerClasses))
	for _, class := range markerClasses {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		selectors = append(selectors, "a."+class)
	}
	if len(selectors) == 0 {
		selectors = append(selectors, "a."+MarkerClass)
	}

	return ContentParser{markerSelector: strings.Join(selectors, ", ")}
}

// ParseContent reads fragment content with the default parser.
func ParseContent(content string) ParseResult {
	return defaultParser.Parse(content)
}

// Parse resolves content to a label and link. It never fails: anything it
// cannot read falls back to DefaultLabel and DefaultTarget.
func (p ContentParser) Parse(content string) ParseResult {
	res := ParseResult{
		Label:  DefaultLabel,
		Target: DefaultTarget,
		Case:   CaseDefault,
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		res.warn(WarningMissingContent, "", "button content is empty; using defaults")
		return res
	}

	if !gjson.Valid(trimmed) {
		res.warn(WarningMalformedPayload, "", "button content is not valid JSON; using defaults")
		return res
	}

	value := gjson.Parse(trimmed)
	switch {
	case value.IsObject():
		res.Case = CaseObject
		res.Label = res.field("buttonText", coerceString(lastMember(value, "buttonText")), DefaultLabel)
		res.Target = res.field("buttonLink", coerceString(lastMember(value, "buttonLink")), DefaultTarget)
	case value.Type == gjson.String:
		res.Case = CaseLegacyHTML
		p.parseLegacy(value.String(), &res)
	default:
		res.warn(WarningMalformedPayload, "", fmt.Sprintf("button content is a JSON %s; using defaults", jsonKind(value)))
	}

	return res
}

func (p ContentParser) parseLegacy(markup string, res *ParseResult) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		res.warn(WarningMalformedPayload, "", fmt.Sprintf("legacy button HTML could not be parsed: %v", err))
		return
	}

	anchor := doc.Find(p.markerSelector).First()
	if anchor.Length() == 0 {
		res.warn(WarningLegacyContent, "", "legacy button HTML has no marked anchor; using defaults")
		return
	}

	href, _ := anchor.Attr("href")
	res.Label = res.field("buttonText", anchor.Text(), DefaultLabel)
	res.Target = res.field("buttonLink", href, DefaultTarget)
	res.warn(WarningLegacyContent, "", "button content was read from a legacy anchor")
}

func (r *ParseResult) field(name, value, fallback string) string {
	if value == "" {
		r.warn(WarningDefaultedField, name, fmt.Sprintf("%s is missing or empty; using %q", name, fallback))
		return fallback
	}
	return value
}

func (r *ParseResult) warn(warnType WarningType, field, message string) {
	r.Warnings = append(r.Warnings, Warning{
		Type:    warnType,
		Field:   field,
		Message: message,
	})
}

// lastMember returns the last member of obj named key. A key repeated in the
// object resolves to its final value, as JSON.parse does.
func lastMember(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

// coerceString turns any JSON value into text: strings verbatim, numbers and
// booleans by their literal, null and absent values as "", containers as raw JSON.
func coerceString(value gjson.Result) string {
	if !value.Exists() {
		return ""
	}

	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return value.Str
	default:
		return value.Raw
	}
}

func jsonKind(value gjson.Result) string {
	switch {
	case value.IsArray():
		return "array"
	case value.Type == gjson.Number:
		return "number"
	case value.Type == gjson.True, value.Type == gjson.False:
		return "boolean"
	case value.Type == gjson.Null:
		return "null"
	default:
		return value.Type.String()
	}
}
