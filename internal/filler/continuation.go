package filler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/utils"
)

var errSectionTimeout = errors.New("section did not appear in time")

// Outcome is the result of the second phase of section creation.
type Outcome struct {
	Kind      SectionKind
	Requested int
	Created   int
	Filled    int
	TimedOut  bool
	Err       error
}

// Continuation is a pending "add another section" operation. The add control has
// already been clicked once; Wait polls for the new section and fills it, then
// repeats the click for every further entry. A missing control or a section that
// never shows up ends the chain quietly.
type Continuation struct {
	pass     *pass
	kind     SectionKind
	known    int
	entries  []entry
	interval time.Duration
	timeout  time.Duration

	once    sync.Once
	outcome Outcome
}

// Kind reports which repeated category the continuation fills.
func (c *Continuation) Kind() SectionKind {
	return c.kind
}

// Pending reports how many entries still wait for a section.
func (c *Continuation) Pending() int {
	return len(c.entries)
}

// Wait runs the continuation to the end. Later calls return the first outcome.
func (c *Continuation) Wait(ctx context.Context) Outcome {
	c.once.Do(func() {
		c.outcome = c.run(ctx)
		c.pass.logger.Info("section continuation finished",
			zap.String("kind", c.kind.String()),
			zap.Int("requested", c.outcome.Requested),
			zap.Int("created", c.outcome.Created),
			zap.Int("filled", c.outcome.Filled),
			zap.Bool("timed_out", c.outcome.TimedOut),
		)
	})

	return c.outcome
}

func (c *Continuation) run(ctx context.Context) Outcome {
	out := Outcome{Kind: c.kind, Requested: len(c.entries)}

	for i, e := range c.entries {
		if i > 0 && !c.clickAdd() {
			c.pass.logger.Debug("add control disappeared", zap.String("kind", c.kind.String()))
			break
		}

		filled, err := c.fillNext(ctx, c.known+i, e)
		if errors.Is(err, errSectionTimeout) {
			out.TimedOut = true
			break
		}
		if err != nil {
			out.Err = err
			break
		}

		out.Created++
		out.Filled += filled
	}

	return out
}

func (c *Continuation) clickAdd() bool {
	clicked := false

	c.pass.doc.Update(func(root *html.Node) {
		if ctl := findAddControl(root, c.kind); ctl != nil {
			clicked = c.pass.click(ctl)
		}
	})

	return clicked
}

// fillNext waits until more than known sections exist and fills the last one.
func (c *Continuation) fillNext(ctx context.Context, known int, e entry) (int, error) {
	deadline := time.Now().Add(c.timeout)

	for {
		filled, found := 0, false

		c.pass.doc.Update(func(root *html.Node) {
			sections := FindSections(root, c.kind)
			if len(sections) <= known {
				return
			}

			found = true
			c.pass.root = root
			filled = c.pass.fillEntry(sections[len(sections)-1], e)
		})

		if found {
			return filled, nil
		}

		if !time.Now().Before(deadline) {
			return 0, errSectionTimeout
		}

		if err := utils.WaitFor(ctx, c.interval); err != nil {
			return 0, err
		}
	}
}
