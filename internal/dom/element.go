package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsTag reports whether n is an element with one of the given tag names.
func IsTag(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}

	for _, tag := range tags {
		if n.Data == tag {
			return true
		}
	}

	return false
}

// Attr returns the attribute value or an empty string.
func Attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

// HasAttr reports whether the attribute is present, whatever its value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}

	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// SetAttr sets or adds an attribute.
func SetAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr drops an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// TextContent concatenates all descendant text nodes.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}

	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
				continue
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)

	return b.String()
}

// QueryAll returns the descendants of scope matching pred, in document order.
func QueryAll(scope *html.Node, pred func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	if scope == nil {
		return found
	}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && pred(c) {
				found = append(found, c)
			}
			walk(c.FirstChild)
		}
	}
	walk(scope.FirstChild)

	return found
}

// QueryTags returns the descendants of scope with one of the given tag names.
func QueryTags(scope *html.Node, tags ...string) []*html.Node {
	return QueryAll(scope, func(n *html.Node) bool { return IsTag(n, tags...) })
}

// ByID finds the first element in the tree of root with the given id.
func ByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}

	matches := QueryAll(root, func(n *html.Node) bool { return Attr(n, "id") == id })
	if len(matches) == 0 {
		return nil
	}

	return matches[0]
}

// Closest returns n or its nearest ancestor with one of the given tag names.
func Closest(n *html.Node, tags ...string) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if IsTag(c, tags...) {
			return c
		}
	}

	return nil
}

// Contains reports whether descendant sits inside ancestor (or is it).
func Contains(ancestor, descendant *html.Node) bool {
	for c := descendant; c != nil; c = c.Parent {
		if c == ancestor {
			return true
		}
	}

	return false
}

// PreviousElement returns the previous element sibling.
func PreviousElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}

	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}

	return nil
}

// AppendHTML parses fragment in the context of parent and appends the result to it.
func AppendHTML(parent *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     parent.Data,
		DataAtom: atom.Lookup([]byte(parent.Data)),
	})
	if err != nil {
		return err
	}

	for _, n := range nodes {
		parent.AppendChild(n)
	}

	return nil
}
