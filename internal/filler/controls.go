package filler

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
)

// Kind is the closed set of control variants the filler knows how to set.
type Kind int

const (
	KindTextLike Kind = iota
	KindDropdown
	KindCheckbox
	KindRadioGroup
	KindFileInput
)

func (k Kind) String() string {
	switch k {
	case KindTextLike:
		return "text"
	case KindDropdown:
		return "dropdown"
	case KindCheckbox:
		return "checkbox"
	case KindRadioGroup:
		return "radio"
	case KindFileInput:
		return "file"
	default:
		return "unknown"
	}
}

// Classify maps an element onto its control variant. Date and month inputs are text-like.
func Classify(n *html.Node) Kind {
	if dom.IsTag(n, "select") {
		return KindDropdown
	}

	switch dom.InputType(n) {
	case "checkbox":
		return KindCheckbox
	case "radio":
		return KindRadioGroup
	case "file":
		return KindFileInput
	default:
		return KindTextLike
	}
}

// Effect reports whether a value was applied and whether the visible state changed.
type Effect struct {
	Filled  bool
	Changed bool
}

// Control sets a raw profile value on one element.
type Control interface {
	Kind() Kind
	Apply(value string) Effect
}

// NewControl wraps el. scope bounds the radio group lookup.
func NewControl(doc *dom.Document, scope, el *html.Node) Control {
	switch Classify(el) {
	case KindDropdown:
		return &dropdown{doc: doc, el: el}
	case KindCheckbox:
		return &checkbox{doc: doc, el: el}
	case KindRadioGroup:
		return &radioGroup{doc: doc, scope: scope, el: el}
	case KindFileInput:
		return &fileInput{doc: doc, el: el}
	default:
		return &textLike{doc: doc, el: el}
	}
}

type dropdown struct {
	doc *dom.Document
	el  *html.Node
}

func (c *dropdown) Kind() Kind { return KindDropdown }

func (c *dropdown) Apply(value string) Effect {
	needle := strings.ToLower(value)

	for i, opt := range dom.Options(c.el) {
		if !strings.Contains(strings.ToLower(dom.OptionText(opt)), needle) {
			continue
		}

		before := dom.SelectedIndex(c.el)
		dom.Select(c.el, i)
		c.doc.Dispatch(c.el, dom.EventChange)

		return Effect{Filled: true, Changed: before != i}
	}

	return Effect{}
}

type checkbox struct {
	doc *dom.Document
	el  *html.Node
}

func (c *checkbox) Kind() Kind { return KindCheckbox }

func (c *checkbox) Apply(value string) Effect {
	checked := truthy(value)
	before := dom.Checked(c.el)

	dom.SetChecked(c.el, checked)
	c.doc.Dispatch(c.el, dom.EventChange)

	return Effect{Filled: true, Changed: before != checked}
}

type radioGroup struct {
	doc   *dom.Document
	scope *html.Node
	el    *html.Node
}

func (c *radioGroup) Kind() Kind { return KindRadioGroup }

func (c *radioGroup) members() []*html.Node {
	name := dom.Attr(c.el, "name")
	if name == "" {
		return []*html.Node{c.el}
	}

	return dom.QueryAll(c.scope, func(n *html.Node) bool {
		return dom.InputType(n) == "radio" && dom.Attr(n, "name") == name
	})
}

func (c *radioGroup) Apply(value string) Effect {
	needle := strings.ToLower(value)
	group := c.members()

	for _, radio := range group {
		if !strings.EqualFold(dom.Attr(radio, "value"), value) &&
			!strings.Contains(strings.ToLower(radioLabel(c.doc.Root(), radio)), needle) {
			continue
		}

		before := dom.Checked(radio)
		for _, other := range group {
			if other != radio {
				dom.SetChecked(other, false)
			}
		}
		dom.SetChecked(radio, true)
		c.doc.Dispatch(radio, dom.EventChange)

		return Effect{Filled: true, Changed: !before}
	}

	return Effect{}
}

// radioLabel is the text right after the radio, or the label bound to it.
func radioLabel(root, radio *html.Node) string {
	if next := radio.NextSibling; next != nil {
		if text := strings.TrimSpace(dom.TextContent(next)); text != "" {
			return text
		}
	}

	if id := dom.Attr(radio, "id"); id != "" {
		labels := dom.QueryAll(root, func(n *html.Node) bool {
			return dom.IsTag(n, "label") && dom.Attr(n, "for") == id
		})
		if len(labels) > 0 {
			return strings.TrimSpace(dom.TextContent(labels[0]))
		}
	}

	if label := dom.Closest(radio, "label"); label != nil {
		return strings.TrimSpace(dom.TextContent(label))
	}

	return ""
}

type textLike struct {
	doc *dom.Document
	el  *html.Node
}

func (c *textLike) Kind() Kind { return KindTextLike }

func (c *textLike) Apply(value string) Effect {
	before := dom.Value(c.el)

	dom.SetValue(c.el, value)
	c.doc.Dispatch(c.el, dom.EventInput)
	c.doc.Dispatch(c.el, dom.EventChange)

	return Effect{Filled: true, Changed: before != value}
}

type fileInput struct {
	doc *dom.Document
	el  *html.Node
}

func (c *fileInput) Kind() Kind { return KindFileInput }

// Apply never fills a file input from a string.
func (c *fileInput) Apply(string) Effect {
	return Effect{}
}

// Attach hands a file to the input. The document may refuse it.
func (c *fileInput) Attach(file dom.File) (Effect, error) {
	if err := c.doc.SetFiles(c.el, file); err != nil {
		return Effect{}, err
	}

	c.doc.Dispatch(c.el, dom.EventChange)
	return Effect{Filled: true, Changed: true}, nil
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "no", "off":
		return false
	default:
		return true
	}
}
