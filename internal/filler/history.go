package filler

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/autofill/internal/profile"
)

// fieldValue is one field of an entry with the profile value it should receive.
type fieldValue struct {
	field Field
	value string
}

type entry []fieldValue

func periodValues(dates dateFields, from, to string, current bool) entry {
	start := splitDate(from)
	values := entry{
		{dates.StartDate, from},
		{dates.StartMonth, start.Month},
		{dates.StartYear, start.Year},
	}

	if current {
		return values
	}

	end := splitDate(to)
	return append(values,
		fieldValue{dates.EndDate, to},
		fieldValue{dates.EndMonth, end.Month},
		fieldValue{dates.EndYear, end.Year},
	)
}

// currentValue only marks ongoing entries; a finished one leaves the checkbox alone.
func currentValue(current bool) string {
	if !current {
		return ""
	}
	return strconv.FormatBool(current)
}

func experienceEntry(e profile.Experience) entry {
	values := entry{
		{FieldJobTitle, e.Title},
		{FieldCompany, e.Company},
		{FieldJobLocation, e.Location},
		{FieldJobDescription, e.Description},
	}
	values = append(values, periodValues(experienceDates, e.FromDate, e.EndDate(), e.Current)...)
	return append(values, fieldValue{FieldJobCurrent, currentValue(e.Current)})
}

func educationEntry(e profile.Education) entry {
	values := entry{
		{FieldInstitution, e.Institution},
		{FieldMajor, e.Major},
		{FieldDegree, e.Degree},
		{FieldSchoolLocation, e.Location},
		{FieldSchoolDescription, e.Description},
	}
	values = append(values, periodValues(educationDates, e.FromDate, e.EndDate(), e.Current)...)
	return append(values, fieldValue{FieldStudyCurrent, currentValue(e.Current)})
}

// historyStep fills one repeated category (jobs or schools).
type historyStep struct {
	toggle
	kind SectionKind
}

func newExperienceStep() step { return &historyStep{kind: SectionExperience} }

func newEducationStep() step { return &historyStep{kind: SectionEducation} }

func (s *historyStep) Name() string { return s.kind.String() }

func (s *historyStep) entries(data *profile.Profile) []entry {
	var result []entry

	switch s.kind {
	case SectionEducation:
		for _, e := range data.Educations {
			result = append(result, educationEntry(e))
		}
	default:
		for _, e := range data.Experiences {
			result = append(result, experienceEntry(e))
		}
	}

	return result
}

func (s *historyStep) Apply(_ context.Context, p *pass, data *profile.Profile) error {
	entries := s.entries(data)
	if len(entries) == 0 {
		return nil
	}

	sections := FindSections(p.root, s.kind)
	if len(sections) == 0 {
		p.logger.Debug("no sections found, filling the first entry into the page",
			zap.String("kind", s.kind.String()),
		)
		p.fillEntry(p.root, entries[0])
		return nil
	}

	for i, section := range sections {
		if i >= len(entries) {
			break
		}
		p.fillEntry(section, entries[i])
	}

	if len(entries) <= len(sections) {
		return nil
	}

	if cont := p.addSection(s.kind, len(sections), entries[len(sections):]); cont != nil {
		p.pending = append(p.pending, cont)
	}

	return nil
}
