package filler

import (
	"context"

	"github.com/spigell/autofill/internal/profile"
)

type personalStep struct {
	toggle
}

func newPersonalStep() step { return &personalStep{} }

func (s *personalStep) Name() string { return StepPersonal }

func (s *personalStep) Apply(_ context.Context, p *pass, data *profile.Profile) error {
	info := data.PersonalInfo

	p.fillEntry(p.root, entry{
		{FieldFirstName, info.FirstName},
		{FieldLastName, info.LastName},
		{FieldFullName, info.FullName()},
		{FieldEmail, info.Email},
		{FieldConfirmEmail, info.ConfirmationEmail()},
		{FieldCity, info.City},
		{FieldPhone, info.Phone},
		{FieldMessage, info.MessageToHiringTeam},
	})

	return nil
}
