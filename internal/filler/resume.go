package filler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
	"github.com/spigell/autofill/internal/profile"
)

var (
	resumeAcceptHints    = []string{"pdf", "doc"}
	resumeContainerHints = []string{"resume", "cv", "upload", "document"}
)

type resumeStep struct {
	toggle
}

func newResumeStep() step { return &resumeStep{} }

func (s *resumeStep) Name() string { return StepResume }

func (s *resumeStep) Apply(_ context.Context, p *pass, data *profile.Profile) error {
	r := data.Resume
	if r == nil {
		return nil
	}

	inputs := resumeInputs(p.root)
	if len(inputs) == 0 {
		return nil
	}

	payload, err := r.Decode()
	if err != nil {
		return fmt.Errorf("reconstruct resume %q: %w", r.Name, err)
	}

	file := dom.File{Name: r.Name, Type: r.Type, Data: payload}

	for _, input := range inputs {
		accept := dom.Attr(input, "accept")
		if !acceptCompatible(accept, r.Name, r.Type) {
			p.logger.Debug("resume type not accepted", zap.String("accept", accept), zap.String("type", r.Type))
			continue
		}

		p.attach(input, file)
	}

	return nil
}

// resumeInputs are the file inputs that look like a document upload.
func resumeInputs(root *html.Node) []*html.Node {
	return dom.QueryAll(root, func(n *html.Node) bool {
		if !dom.IsTag(n, "input") || dom.InputType(n) != "file" || !isEditable(n) {
			return false
		}

		if containsAny(strings.ToLower(dom.Attr(n, "accept")), resumeAcceptHints) {
			return true
		}

		container := dom.Closest(n, "div", "form", "section")
		if container == nil {
			return false
		}

		return containsAny(strings.ToLower(dom.TextContent(container)), resumeContainerHints)
	})
}

// acceptCompatible reports whether a file input with the given accept attribute takes
// the file. Tokens may be MIME types, wildcard MIME types or extensions.
func acceptCompatible(accept, name, mimeType string) bool {
	accept = strings.ToLower(strings.TrimSpace(accept))
	if accept == "" {
		return true
	}

	name = strings.ToLower(name)
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	major, subtype, _ := strings.Cut(mimeType, "/")

	if subtype != "" && strings.Contains(accept, subtype) {
		return true
	}

	for _, token := range strings.Split(accept, ",") {
		token = strings.TrimSpace(token)

		switch {
		case token == "":
		case token == "*/*" || token == mimeType:
			return true
		case strings.HasPrefix(token, "."):
			if strings.HasSuffix(name, token) {
				return true
			}
		case strings.HasSuffix(token, "/*"):
			if major != "" && strings.TrimSuffix(token, "/*") == major {
				return true
			}
		}
	}

	return false
}

// attach hands the resume to one input. A document refusing programmatic
// assignment is a silent skip.
func (p *pass) attach(input *html.Node, file dom.File) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("resume upload failed", zap.Any("panic", r))
		}
	}()

	ctl, ok := NewControl(p.doc, p.root, input).(*fileInput)
	if !ok {
		return
	}

	eff, err := ctl.Attach(file)
	if errors.Is(err, dom.ErrFileAssignmentBlocked) {
		p.logger.Debug("file assignment blocked by the page", zap.String("name", file.Name))
		return
	}
	if err != nil {
		p.logger.Debug("resume not attached", zap.Error(err))
		return
	}

	p.record(eff)
	p.logger.Debug("resume attached", zap.String("name", file.Name), zap.Int("size", len(file.Data)))
}
