package filler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
	"github.com/spigell/autofill/internal/logger"
	"github.com/spigell/autofill/internal/profile"
	"github.com/spigell/autofill/internal/utils"
)

// MessageNoUserData is reported by every fill operation before a profile is loaded.
const MessageNoUserData = "No user data available"

const (
	DefaultSectionTimeout = 5 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond

	logValueLimit = 64
)

var ErrNotReady = errors.New("engine has no profile loaded")

// State is the engine lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "uninitialized"
}

// Options tunes one engine.
type Options struct {
	// SectionTimeout bounds the wait for a section created by an "add" control.
	SectionTimeout time.Duration `mapstructure:"section-timeout"`
	// PollInterval is the delay between re-scans while waiting for that section.
	PollInterval time.Duration `mapstructure:"poll-interval"`
	// Skip lists step names that are never run.
	Skip []string `mapstructure:"skip"`
}

func (o Options) withDefaults() Options {
	if o.SectionTimeout <= 0 {
		o.SectionTimeout = DefaultSectionTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// Result is the outcome of one top-level fill operation.
type Result struct {
	Success      bool
	FilledCount  int
	ChangedCount int
	Message      string
	Steps        []StepReport
	// Err is ErrNotReady when no profile was loaded.
	Err error
	// Pending holds section creations still waiting for the page to render.
	Pending []*Continuation
}

// Engine fills one document from one profile snapshot. Create one per page.
type Engine struct {
	doc    *dom.Document
	logger *zap.Logger
	opts   Options

	mu      sync.Mutex
	state   State
	profile *profile.Profile
	filled  int
	changed int
}

func New(doc *dom.Document, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		doc:    doc,
		logger: log,
		opts:   opts.withDefaults(),
	}
}

// Load reads the profile from the store. The engine becomes Ready on the first
// successful load and keeps that snapshot afterwards.
func (e *Engine) Load(ctx context.Context, store profile.Store) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateReady {
		return nil
	}

	data, err := store.GetFormData(ctx)
	if err != nil {
		return fmt.Errorf("get form data: %w", err)
	}

	if data == nil || data.UserData == nil {
		return profile.ErrNotFound
	}

	e.profile = data.UserData
	e.state = StateReady
	e.logger.Debug("profile loaded",
		zap.Int("experiences", len(e.profile.Experiences)),
		zap.Int("educations", len(e.profile.Educations)),
		zap.Bool("resume", e.profile.Resume != nil),
	)

	return nil
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// FilledCount is the counter of the last fill operation.
func (e *Engine) FilledCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.filled
}

func (e *Engine) FillAll(ctx context.Context) Result {
	return e.run(ctx, "fillAll", allSteps())
}

func (e *Engine) FillPersonal(ctx context.Context) Result {
	return e.run(ctx, "fillPersonal", []step{newPersonalStep()})
}

func (e *Engine) FillExperience(ctx context.Context) Result {
	return e.run(ctx, "fillExperience", []step{newExperienceStep()})
}

func (e *Engine) FillEducation(ctx context.Context) Result {
	return e.run(ctx, "fillEducation", []step{newEducationStep()})
}

func (e *Engine) FillSocial(ctx context.Context) Result {
	return e.run(ctx, "fillSocial", []step{newSocialStep()})
}

func (e *Engine) FillResume(ctx context.Context) Result {
	return e.run(ctx, "fillResume", []step{newResumeStep()})
}

func (e *Engine) run(ctx context.Context, action string, steps []step) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filled, e.changed = 0, 0

	if e.state != StateReady {
		e.logger.Warn("no user data available to fill forms", zap.String(logger.FieldAction, action))
		return Result{Success: false, Message: MessageNoUserData, Err: ErrNotReady}
	}

	for _, name := range e.opts.Skip {
		disableByName(steps, name, "skipped by configuration")
	}

	p := e.newPass()
	reports := make([]StepReport, 0, len(steps))

	e.doc.Update(func(root *html.Node) {
		p.root = root

		for _, s := range steps {
			p.logger = logger.WithPass(e.logger, p.id, action, s.Name())

			report := StepReport{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.Reason()}
			if !s.IsEnabled() {
				p.logger.Info("fill step disabled", zap.String("name", s.Name()), zap.String("reason", s.Reason()))
				reports = append(reports, report)
				continue
			}

			filled, changed := p.filled, p.changed
			if err := s.Apply(ctx, p, e.profile); err != nil {
				report.Err = err
				p.logger.Warn("fill step failed", zap.String("name", s.Name()), zap.Error(err))
			}

			report.Filled = p.filled - filled
			report.Changed = p.changed - changed
			reports = append(reports, report)

			p.logger.Info("fill step",
				zap.String("name", s.Name()),
				zap.Int("filled", report.Filled),
				zap.Int("changed", report.Changed),
			)
		}
	})

	e.filled, e.changed = p.filled, p.changed

	return Result{
		Success:      true,
		FilledCount:  p.filled,
		ChangedCount: p.changed,
		Message:      fmt.Sprintf("Successfully filled %d fields", p.filled),
		Steps:        reports,
		Pending:      p.pending,
	}
}

// newPass starts a pass. Its logger is set per step so entries carry the category.
func (e *Engine) newPass() *pass {
	return &pass{
		id:     uuid.NewString(),
		doc:    e.doc,
		opts:   e.opts,
		logger: e.logger,
	}
}

// pass holds the counters of one fill operation. All methods run inside Document.Update.
type pass struct {
	id     string
	doc    *dom.Document
	root   *html.Node
	opts   Options
	logger *zap.Logger

	filled  int
	changed int
	pending []*Continuation
}

func (p *pass) record(eff Effect) {
	if !eff.Filled {
		return
	}

	p.filled++
	if eff.Changed {
		p.changed++
	}
}

// fill locates and sets one field inside scope.
func (p *pass) fill(scope *html.Node, f Field, value string) bool {
	c := Locate(p.root, scope, f.Keys, value)
	if c == nil {
		return false
	}

	return p.apply(scope, c.Element, f.Name, value, zap.String("key", c.Key.Text), zap.Stringer("strategy", c.Strategy))
}

// apply sets value on el. A panic raised by the page while setting the value is
// logged and reported as a miss.
func (p *pass) apply(scope, el *html.Node, name, value string, fields ...zap.Field) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("field fill failed", zap.String("field", name), zap.Any("panic", r))
			ok = false
		}
	}()

	eff := NewControl(p.doc, scope, el).Apply(value)
	p.record(eff)

	if eff.Filled {
		p.logger.Debug("field filled", append([]zap.Field{
			zap.String("field", name),
			zap.String("value", utils.TruncateForLog(value, logValueLimit)),
		}, fields...)...)
	}

	return eff.Filled
}

func (p *pass) fillEntry(scope *html.Node, e entry) int {
	filled := 0
	for _, fv := range e {
		if p.fill(scope, fv.field, fv.value) {
			filled++
		}
	}
	return filled
}

// addSection clicks the add control of kind and returns the continuation that
// fills the new sections, or nil when the page has no such control.
func (p *pass) addSection(kind SectionKind, known int, entries []entry) *Continuation {
	ctl := findAddControl(p.root, kind)
	if ctl == nil {
		p.logger.Debug("no add control found", zap.String("kind", kind.String()), zap.Int("entries_left", len(entries)))
		return nil
	}

	if !p.doc.HasListeners(dom.EventClick) {
		p.logger.Info("page cannot render new sections", zap.String("kind", kind.String()), zap.Int("entries_left", len(entries)))
		return nil
	}

	if !p.click(ctl) {
		return nil
	}

	return &Continuation{
		pass: &pass{
			id:     p.id,
			doc:    p.doc,
			opts:   p.opts,
			logger: p.logger.With(zap.String("continuation", kind.String())),
		},
		kind:     kind,
		known:    known,
		entries:  entries,
		interval: p.opts.PollInterval,
		timeout:  p.opts.SectionTimeout,
	}
}

// click activates an add control. A page handler that blows up is logged and
// reported as not clicked.
func (p *pass) click(ctl *html.Node) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("add control failed", zap.Any("panic", r))
			ok = false
		}
	}()

	p.doc.Click(ctl)
	return true
}
