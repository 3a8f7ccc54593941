package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// InputType returns the lowercased type of an input, "text" when unset.
// Non-input elements yield an empty string.
func InputType(n *html.Node) string {
	if !IsTag(n, "input") {
		return ""
	}

	t := strings.ToLower(strings.TrimSpace(Attr(n, "type")))
	if t == "" {
		return "text"
	}

	return t
}

// IsFormControl reports whether n is an input, textarea or select.
func IsFormControl(n *html.Node) bool {
	return IsTag(n, "input", "textarea", "select")
}

func Disabled(n *html.Node) bool {
	return HasAttr(n, "disabled")
}

func ReadOnly(n *html.Node) bool {
	return HasAttr(n, "readonly")
}

// Value returns the current value of a form control.
func Value(n *html.Node) string {
	switch {
	case IsTag(n, "textarea"):
		return TextContent(n)
	case IsTag(n, "select"):
		opts := Options(n)
		idx := SelectedIndex(n)
		if idx < 0 {
			return ""
		}
		return OptionValue(opts[idx])
	default:
		return Attr(n, "value")
	}
}

// SetValue replaces the value of an input or textarea.
func SetValue(n *html.Node, value string) {
	if IsTag(n, "textarea") {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			c = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		return
	}

	SetAttr(n, "value", value)
}

func Checked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

func SetChecked(n *html.Node, checked bool) {
	if checked {
		SetAttr(n, "checked", "")
		return
	}

	RemoveAttr(n, "checked")
}

// Options returns the option elements of a select in document order.
func Options(sel *html.Node) []*html.Node {
	return QueryTags(sel, "option")
}

// OptionText is the visible label of an option.
func OptionText(opt *html.Node) string {
	if label := Attr(opt, "label"); label != "" {
		return label
	}

	return strings.TrimSpace(TextContent(opt))
}

// OptionValue falls back to the option text when no value attribute is set.
func OptionValue(opt *html.Node) string {
	if v, ok := lookupAttr(opt, "value"); ok {
		return v
	}

	return strings.TrimSpace(TextContent(opt))
}

// SelectedIndex mirrors HTMLSelectElement.selectedIndex for single selects:
// the last option marked selected, else the first option, else -1.
func SelectedIndex(sel *html.Node) int {
	opts := Options(sel)
	if len(opts) == 0 {
		return -1
	}

	idx := 0
	for i, opt := range opts {
		if HasAttr(opt, "selected") {
			idx = i
		}
	}

	return idx
}

// Select marks the option at idx as the only selected one.
func Select(sel *html.Node, idx int) {
	for i, opt := range Options(sel) {
		if i == idx {
			SetAttr(opt, "selected", "")
			continue
		}
		RemoveAttr(opt, "selected")
	}
}
