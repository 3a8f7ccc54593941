package filler

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
)

// Strategy tells how a candidate was found, in priority order.
type Strategy int

const (
	StrategyID Strategy = iota
	StrategyName
	StrategyPlaceholder
	StrategyLabel
)

func (s Strategy) String() string {
	switch s {
	case StrategyID:
		return "id"
	case StrategyName:
		return "name"
	case StrategyPlaceholder:
		return "placeholder"
	case StrategyLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Candidate is a transient match found during one fill pass.
type Candidate struct {
	Element  *html.Node
	Key      Key
	Strategy Strategy
}

// nonFillableInputs are never written by the locator.
var nonFillableInputs = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
	"file":   true,
}

func isLocatable(n *html.Node) bool {
	if !dom.IsFormControl(n) {
		return false
	}

	return !nonFillableInputs[dom.InputType(n)]
}

func isEditable(n *html.Node) bool {
	return n != nil && !dom.Disabled(n) && !dom.ReadOnly(n)
}

// Locate finds the element of scope that should receive value for the given key list.
// An empty value never matches anything. Keys are tried in order; within a key the
// id, name, placeholder and label strategies are tried in that order.
func Locate(root, scope *html.Node, ks []Key, value string) *Candidate {
	if value == "" || scope == nil {
		return nil
	}

	controls := dom.QueryAll(scope, isLocatable)
	labels := dom.QueryTags(scope, "label")

	for _, key := range ks {
		if key.Text == "" {
			continue
		}

		if el := matchAttr(controls, "id", key); el != nil {
			return &Candidate{Element: el, Key: key, Strategy: StrategyID}
		}

		if el := matchAttr(controls, "name", key); el != nil {
			return &Candidate{Element: el, Key: key, Strategy: StrategyName}
		}

		if el := matchPlaceholder(controls, key); el != nil {
			return &Candidate{Element: el, Key: key, Strategy: StrategyPlaceholder}
		}

		if el := matchLabel(root, labels, key); el != nil {
			return &Candidate{Element: el, Key: key, Strategy: StrategyLabel}
		}
	}

	return nil
}

// matchAttr prefers an exact attribute match over a substring match; both are case-sensitive.
func matchAttr(controls []*html.Node, attr string, key Key) *html.Node {
	var partial *html.Node

	for _, el := range controls {
		if !isEditable(el) {
			continue
		}

		v := dom.Attr(el, attr)
		if v == "" {
			continue
		}

		if v == key.Text {
			return el
		}

		if partial == nil && !key.Exact && strings.Contains(v, key.Text) {
			partial = el
		}
	}

	return partial
}

func matchPlaceholder(controls []*html.Node, key Key) *html.Node {
	for _, el := range controls {
		if !isEditable(el) {
			continue
		}

		if textMatches(dom.Attr(el, "placeholder"), key) {
			return el
		}
	}

	return nil
}

func matchLabel(root *html.Node, labels []*html.Node, key Key) *html.Node {
	for _, label := range labels {
		if !textMatches(dom.TextContent(label), key) {
			continue
		}

		el := labelTarget(root, label)
		if isLocatable(el) && isEditable(el) {
			return el
		}
	}

	return nil
}

// labelTarget resolves the control a label describes: its for= binding,
// else the first control nested inside it.
func labelTarget(root, label *html.Node) *html.Node {
	if id := dom.Attr(label, "for"); id != "" {
		return dom.ByID(root, id)
	}

	nested := dom.QueryAll(label, dom.IsFormControl)
	if len(nested) == 0 {
		return nil
	}

	return nested[0]
}

// textMatches is the case-insensitive comparison used for human-readable text.
// Exact keys must equal the whole text once punctuation like "Name *:" is trimmed.
func textMatches(text string, key Key) bool {
	text = strings.ToLower(text)
	needle := strings.ToLower(key.Text)

	if !key.Exact {
		return strings.Contains(text, needle)
	}

	return normalizeLabel(text) == needle
}

func normalizeLabel(text string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "*:"))
}
