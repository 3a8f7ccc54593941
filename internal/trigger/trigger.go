package trigger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/autofill/internal/filler"
	"github.com/spigell/autofill/internal/logger"
)

// Action names accepted from the message channel.
const (
	ActionFillAll        = "fillAll"
	ActionFillPersonal   = "fillPersonal"
	ActionFillExperience = "fillExperience"
	ActionFillEducation  = "fillEducation"
	ActionFillSocial     = "fillSocial"
	ActionFillResume     = "fillResume"
)

const MessageUnknownAction = "Unknown action"

// Actions lists every supported action in menu order.
func Actions() []string {
	return []string{
		ActionFillAll,
		ActionFillPersonal,
		ActionFillExperience,
		ActionFillEducation,
		ActionFillSocial,
		ActionFillResume,
	}
}

// Response is the answer sent back to the caller of an action.
type Response struct {
	Success     bool   `json:"success"`
	FilledCount *int   `json:"filledCount,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Engine is the part of filler.Engine the dispatcher drives.
type Engine interface {
	FillAll(ctx context.Context) filler.Result
	FillPersonal(ctx context.Context) filler.Result
	FillExperience(ctx context.Context) filler.Result
	FillEducation(ctx context.Context) filler.Result
	FillSocial(ctx context.Context) filler.Result
	FillResume(ctx context.Context) filler.Result
}

// Dispatcher maps action names onto engine operations. Requests are handled one at a time.
type Dispatcher struct {
	engine Engine
	logger *zap.Logger

	// Wait bounds how long Handle waits for sections created by "add" controls.
	// Zero leaves them running in the background and they are not reported.
	Wait time.Duration

	mu         sync.Mutex
	background sync.WaitGroup
}

func NewDispatcher(engine Engine, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{engine: engine, logger: log}
}

func (d *Dispatcher) operation(action string) func(context.Context) filler.Result {
	switch action {
	case ActionFillAll:
		return d.engine.FillAll
	case ActionFillPersonal:
		return d.engine.FillPersonal
	case ActionFillExperience:
		return d.engine.FillExperience
	case ActionFillEducation:
		return d.engine.FillEducation
	case ActionFillSocial:
		return d.engine.FillSocial
	case ActionFillResume:
		return d.engine.FillResume
	default:
		return nil
	}
}

// Handle runs one action to completion and builds its response.
func (d *Dispatcher) Handle(ctx context.Context, action string) Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := logger.WithFields(d.logger, logger.StringFields(logger.StringField{Key: logger.FieldAction, Value: action})...)

	op := d.operation(action)
	if op == nil {
		log.Warn("unknown action")
		return Response{Success: false, Message: MessageUnknownAction}
	}

	res := op(ctx)
	if !res.Success {
		log.Info("action failed", zap.String("message", res.Message))
		return Response{Success: false, Message: res.Message}
	}

	filled := res.FilledCount + d.settle(ctx, res.Pending)

	log.Info("action finished", zap.Int("filled", filled))

	return Response{Success: true, FilledCount: &filled, Message: res.Message}
}

// settle waits up to d.Wait for pending continuations and returns the fields they filled.
// Without a wait they finish in the background.
func (d *Dispatcher) settle(ctx context.Context, pending []*filler.Continuation) int {
	if len(pending) == 0 {
		return 0
	}

	if d.Wait <= 0 {
		for _, c := range pending {
			d.background.Add(1)
			go func(c *filler.Continuation) {
				defer d.background.Done()
				c.Wait(context.Background())
			}(c)
		}
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, d.Wait)
	defer cancel()

	filled := 0
	for _, c := range pending {
		filled += c.Wait(ctx).Filled
	}

	return filled
}

// Drain blocks until background continuations are done or ctx ends.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.background.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
