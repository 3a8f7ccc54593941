package filler

import (
	"context"

	"github.com/spigell/autofill/internal/profile"
)

// Step names, also used in the fill.skip setting.
const (
	StepPersonal   = "personal"
	StepExperience = "experience"
	StepEducation  = "education"
	StepSocial     = "social"
	StepResume     = "resume"
)

// step fills one profile category during a pass.
type step interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool
	Reason() string

	Apply(ctx context.Context, p *pass, data *profile.Profile) error
}

// StepReport describes what a step did during a pass.
type StepReport struct {
	Name    string
	Enabled bool
	Reason  string
	Filled  int
	Changed int
	Err     error
}

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) Reason() string { return t.reason }

// disableByName marks a step with the provided name as disabled while keeping it in the list.
func disableByName(steps []step, name, reason string) {
	for _, s := range steps {
		if s.Name() == name {
			s.Disable(reason)
		}
	}
}

func allSteps() []step {
	return []step{
		newPersonalStep(),
		newExperienceStep(),
		newEducationStep(),
		newSocialStep(),
		newResumeStep(),
	}
}
