package filler

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
)

// SectionKind is a kind of repeated block.
type SectionKind int

const (
	SectionExperience SectionKind = iota
	SectionEducation
)

func (k SectionKind) String() string {
	if k == SectionEducation {
		return "education"
	}
	return "experience"
}

type sectionVocabulary struct {
	keywords    []string
	addKeywords []string
}

var vocabularies = map[SectionKind]sectionVocabulary{
	SectionExperience: {
		keywords:    []string{"experience", "employment", "work history"},
		addKeywords: []string{"experience", "employment", "work"},
	},
	SectionEducation: {
		keywords:    []string{"education", "academic", "school", "university", "college"},
		addKeywords: []string{"education", "school", "degree"},
	},
}

var sectionTags = []string{"div", "section", "fieldset"}

// FindSections returns the repeated blocks of kind in document order. A block is a
// container mentioning one of the kind keywords and holding a fillable control.
// Wrappers around other qualifying blocks are dropped so each entry gets its own scope.
func FindSections(root *html.Node, kind SectionKind) []*html.Node {
	vocab := vocabularies[kind]

	candidates := dom.QueryAll(root, func(n *html.Node) bool {
		if !dom.IsTag(n, sectionTags...) {
			return false
		}

		if !containsAny(strings.ToLower(dom.TextContent(n)), vocab.keywords) {
			return false
		}

		return len(dom.QueryAll(n, isLocatable)) > 0
	})

	sections := make([]*html.Node, 0, len(candidates))
	for _, c := range candidates {
		if !wrapsAny(c, candidates) {
			sections = append(sections, c)
		}
	}

	return sections
}

func wrapsAny(n *html.Node, others []*html.Node) bool {
	for _, other := range others {
		if other != n && dom.Contains(n, other) {
			return true
		}
	}
	return false
}

// findAddControl returns the first "add another" control of kind, or nil.
func findAddControl(root *html.Node, kind SectionKind) *html.Node {
	vocab := vocabularies[kind]

	controls := dom.QueryAll(root, func(n *html.Node) bool {
		if dom.IsTag(n, "button", "a") {
			return true
		}
		return dom.IsTag(n, "input") && dom.InputType(n) == "button"
	})

	for _, c := range controls {
		if dom.Disabled(c) {
			continue
		}

		text := dom.TextContent(c)
		if dom.IsTag(c, "input") {
			text = dom.Attr(c, "value")
		}
		text = strings.ToLower(text)

		if (strings.Contains(text, "add") || strings.Contains(text, "+")) && containsAny(text, vocab.addKeywords) {
			return c
		}
	}

	return nil
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
