package filler

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
	"github.com/spigell/autofill/internal/profile"
)

var socialContainerHints = []string{"social", "profile", "media", "url", "link"}

type socialLink struct {
	platform string
	url      string
}

// socialLinks lists the stored links in the priority used for generic inputs.
func socialLinks(sp profile.SocialProfiles) []socialLink {
	all := []socialLink{
		{"linkedin", sp.LinkedIn},
		{"twitter", sp.Twitter},
		{"facebook", sp.Facebook},
		{"website", sp.Website},
	}

	links := make([]socialLink, 0, len(all))
	for _, l := range all {
		if l.url != "" {
			links = append(links, l)
		}
	}

	return links
}

type socialStep struct {
	toggle
}

func newSocialStep() step { return &socialStep{} }

func (s *socialStep) Name() string { return StepSocial }

func (s *socialStep) Apply(_ context.Context, p *pass, data *profile.Profile) error {
	sp := data.SocialProfiles

	p.fillEntry(p.root, entry{
		{FieldLinkedIn, sp.LinkedIn},
		{FieldFacebook, sp.Facebook},
		{FieldTwitter, sp.Twitter},
		{FieldWebsite, sp.Website},
	})

	links := socialLinks(sp)
	if len(links) == 0 {
		return nil
	}

	for _, input := range genericSocialInputs(p.root) {
		label := strings.ToLower(fieldLabel(p.root, input))
		if label == "" {
			continue
		}

		// First platform named by the label wins.
		for _, l := range links {
			if !strings.Contains(label, l.platform) {
				continue
			}

			if dom.Value(input) == "" && isEditable(input) {
				p.apply(p.root, input, "social."+l.platform, l.url, zap.String("label", label))
			}
			break
		}
	}

	return nil
}

// genericSocialInputs are url and text inputs sitting in a block about profiles or links.
func genericSocialInputs(root *html.Node) []*html.Node {
	return dom.QueryAll(root, func(n *html.Node) bool {
		if !dom.IsTag(n, "input") {
			return false
		}

		if t := dom.InputType(n); t != "url" && t != "text" {
			return false
		}

		container := dom.Closest(n, "div", "form", "section")
		if container == nil {
			return false
		}

		return containsAny(strings.ToLower(dom.TextContent(container)), socialContainerHints)
	})
}

// fieldLabel guesses the caption of a field: a label bound to it, a label around it,
// or a label-like element right before it or before its parent.
func fieldLabel(root, field *html.Node) string {
	if id := dom.Attr(field, "id"); id != "" {
		labels := dom.QueryAll(root, func(n *html.Node) bool {
			return dom.IsTag(n, "label") && dom.Attr(n, "for") == id
		})
		if len(labels) > 0 {
			return strings.TrimSpace(dom.TextContent(labels[0]))
		}
	}

	if label := dom.Closest(field, "label"); label != nil {
		text := strings.TrimSpace(dom.TextContent(label))
		if value := dom.Value(field); value != "" {
			text = strings.Replace(text, value, "", 1)
		}
		return strings.TrimSpace(text)
	}

	if field.Parent != nil {
		if sibling := dom.PreviousElement(field.Parent); dom.IsTag(sibling, "label", "div", "span") {
			return strings.TrimSpace(dom.TextContent(sibling))
		}
	}

	if sibling := dom.PreviousElement(field); dom.IsTag(sibling, "label", "div", "span") {
		return strings.TrimSpace(dom.TextContent(sibling))
	}

	return ""
}
