package filler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/spigell/autofill/internal/dom"
	"github.com/spigell/autofill/internal/profile"
)

const adaPage = `<form>
<input id="firstName">
<input id="lastName">
<input id="email">
</form>`

func ada() *profile.Profile {
	return &profile.Profile{
		PersonalInfo: profile.PersonalInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com"},
	}
}

func newReadyEngine(t *testing.T, body string, p *profile.Profile, opts Options) (*Engine, *dom.Document) {
	t.Helper()

	doc := parsePage(t, body)
	engine := New(doc, zap.NewNop(), opts)
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(p)))
	require.Equal(t, StateReady, engine.State())

	return engine, doc
}

func valueByID(doc *dom.Document, id string) string {
	var value string
	doc.Update(func(root *html.Node) {
		value = dom.Value(dom.ByID(root, id))
	})
	return value
}

func nodeByID(doc *dom.Document, id string) *html.Node {
	var n *html.Node
	doc.Update(func(root *html.Node) {
		n = dom.ByID(root, id)
	})
	return n
}

func TestEngineUninitialized(t *testing.T) {
	t.Parallel()

	doc := parsePage(t, adaPage)
	engine := New(doc, nil, Options{})

	assert.Equal(t, StateUninitialized, engine.State())

	for _, fill := range []func(context.Context) Result{
		engine.FillAll, engine.FillPersonal, engine.FillExperience,
		engine.FillEducation, engine.FillSocial, engine.FillResume,
	} {
		res := fill(context.Background())
		assert.False(t, res.Success)
		assert.Equal(t, MessageNoUserData, res.Message)
		assert.ErrorIs(t, res.Err, ErrNotReady)
	}

	assert.Empty(t, doc.Events())
}

func TestEngineLoadWithoutProfile(t *testing.T) {
	t.Parallel()

	engine := New(parsePage(t, adaPage), nil, Options{})

	err := engine.Load(context.Background(), profile.NewMemoryStore(nil))
	require.ErrorIs(t, err, profile.ErrNotFound)
	assert.Equal(t, StateUninitialized, engine.State())
	assert.False(t, engine.FillAll(context.Background()).Success)
}

func TestEngineLoadKeepsFirstSnapshot(t *testing.T) {
	t.Parallel()

	engine, doc := newReadyEngine(t, adaPage, ada(), Options{})

	other := &profile.Profile{PersonalInfo: profile.PersonalInfo{FirstName: "Grace"}}
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(other)))

	engine.FillPersonal(context.Background())
	assert.Equal(t, "Ada", valueByID(doc, "firstName"))
}

func TestFillPersonalEndToEnd(t *testing.T) {
	t.Parallel()

	engine, doc := newReadyEngine(t, adaPage, ada(), Options{})

	res := engine.FillPersonal(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 3, res.FilledCount)
	assert.Equal(t, 3, engine.FilledCount())
	assert.Equal(t, "Successfully filled 3 fields", res.Message)

	assert.Equal(t, "Ada", valueByID(doc, "firstName"))
	assert.Equal(t, "Lovelace", valueByID(doc, "lastName"))
	assert.Equal(t, "ada@x.com", valueByID(doc, "email"))
	assert.Equal(t, []string{dom.EventInput, dom.EventChange}, doc.EventsFor(nodeByID(doc, "email")))
}

func TestFillPersonalWithFullName(t *testing.T) {
	t.Parallel()

	page := `<form><input id="firstName"><input id="lastName"><input id="email"><input id="fullname"></form>`
	engine, doc := newReadyEngine(t, page, ada(), Options{})

	res := engine.FillAll(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 4, res.FilledCount)
	assert.Equal(t, "Ada Lovelace", valueByID(doc, "fullname"))
}

func TestFullNameNeedsBothParts(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{PersonalInfo: profile.PersonalInfo{FirstName: "Ada"}}
	engine, doc := newReadyEngine(t, `<input id="fullname" value="keep">`, p, Options{})

	res := engine.FillPersonal(context.Background())
	assert.Equal(t, 0, res.FilledCount)
	assert.Equal(t, "keep", valueByID(doc, "fullname"))
}

func TestConfirmEmailFallsBack(t *testing.T) {
	t.Parallel()

	page := `<input id="email"><input id="confirm-email">`
	engine, doc := newReadyEngine(t, page, ada(), Options{})

	engine.FillPersonal(context.Background())
	assert.Equal(t, "ada@x.com", valueByID(doc, "confirm-email"))
}

func TestEmptyValuesAreNeverWritten(t *testing.T) {
	t.Parallel()

	page := `<input id="firstName"><input id="phone" value="555"><textarea id="coverletter">draft</textarea>`
	p := &profile.Profile{PersonalInfo: profile.PersonalInfo{FirstName: "Ada"}}
	engine, doc := newReadyEngine(t, page, p, Options{})

	res := engine.FillAll(context.Background())
	assert.Equal(t, 1, res.FilledCount)
	assert.Equal(t, "555", valueByID(doc, "phone"))
	assert.Equal(t, "draft", valueByID(doc, "coverletter"))
	assert.Empty(t, doc.EventsFor(nodeByID(doc, "phone")))
	assert.Empty(t, doc.EventsFor(nodeByID(doc, "coverletter")))
}

func TestFillIsIdempotent(t *testing.T) {
	t.Parallel()

	engine, doc := newReadyEngine(t, adaPage, ada(), Options{})

	first := engine.FillAll(context.Background())
	second := engine.FillAll(context.Background())

	assert.Equal(t, 3, first.ChangedCount)
	assert.Equal(t, first.FilledCount, second.FilledCount)
	assert.Equal(t, 0, second.ChangedCount)
	assert.Equal(t, "Ada", valueByID(doc, "firstName"))
}

func TestOnlyOneVariantIsFilled(t *testing.T) {
	t.Parallel()

	page := `<form><input name="first_name" id="a"><input name="fname" id="b"></form>`
	engine, doc := newReadyEngine(t, page, ada(), Options{})

	res := engine.FillPersonal(context.Background())
	assert.Equal(t, 1, res.FilledCount)
	assert.Equal(t, "Ada", valueByID(doc, "a"))
	assert.Empty(t, valueByID(doc, "b"))
}

func experienceSection(i int) string {
	return fmt.Sprintf(`<div class="job" id="job-%[1]d"><h3>Work Experience</h3>
<input id="jobTitle-%[1]d"><input id="company-%[1]d">
<input id="startDate-%[1]d"><input id="startMonth-%[1]d"><input id="startYear-%[1]d">
<input id="endDate-%[1]d"><input id="endMonth-%[1]d"><input id="endYear-%[1]d">
<input type="checkbox" id="current-%[1]d">
</div>`, i)
}

func jobs() []profile.Experience {
	return []profile.Experience{
		{Title: "Engineer", Company: "Analytical Engines", FromDate: "2019-03", ToDate: "2021-11"},
		{Title: "Analyst", Company: "Babbage & Co", FromDate: "2015-01-10", ToDate: "2018-12-31"},
		{Title: "Intern", Company: "Royal Society", FromDate: "2014-06", ToDate: "2014-09"},
	}
}

func TestExperienceSectionsAreZipped(t *testing.T) {
	t.Parallel()

	page := `<div id="jobs">` + experienceSection(0) + experienceSection(1) + `</div>`
	engine, doc := newReadyEngine(t, page, &profile.Profile{Experiences: jobs()[:2]}, Options{})

	res := engine.FillExperience(context.Background())
	require.True(t, res.Success)
	assert.Empty(t, res.Pending)

	assert.Equal(t, "Engineer", valueByID(doc, "jobTitle-0"))
	assert.Equal(t, "Analytical Engines", valueByID(doc, "company-0"))
	assert.Equal(t, "03", valueByID(doc, "startMonth-0"))
	assert.Equal(t, "2019", valueByID(doc, "startYear-0"))
	assert.Equal(t, "11", valueByID(doc, "endMonth-0"))

	assert.Equal(t, "Analyst", valueByID(doc, "jobTitle-1"))
	assert.Equal(t, "Babbage & Co", valueByID(doc, "company-1"))
	assert.Equal(t, "2015-01-10", valueByID(doc, "startDate-1"))
	assert.Equal(t, "2018", valueByID(doc, "endYear-1"))
}

func TestCurrentSuppressesEndDate(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{Experiences: []profile.Experience{
		{Title: "Engineer", FromDate: "2019-03", ToDate: "2021-11", Current: true},
	}}
	engine, doc := newReadyEngine(t, experienceSection(0), p, Options{})

	engine.FillExperience(context.Background())

	assert.Equal(t, "2019-03", valueByID(doc, "startDate-0"))
	for _, id := range []string{"endDate-0", "endMonth-0", "endYear-0"} {
		assert.Empty(t, valueByID(doc, id), id)
		assert.Empty(t, doc.EventsFor(nodeByID(doc, id)), id)
	}

	var checked bool
	doc.Update(func(root *html.Node) { checked = dom.Checked(dom.ByID(root, "current-0")) })
	assert.True(t, checked)
}

func TestZeroExperiencesChangeNothing(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{PersonalInfo: profile.PersonalInfo{FirstName: "Ada"}}
	engine, doc := newReadyEngine(t, experienceSection(0), p, Options{})

	res := engine.FillExperience(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 0, res.FilledCount)
	assert.Equal(t, 0, res.ChangedCount)
	assert.Empty(t, doc.Events())
}

func TestNoSectionsFillsFirstEntryOnly(t *testing.T) {
	t.Parallel()

	page := `<form><input id="company"><input id="jobTitle"></form>`
	engine, doc := newReadyEngine(t, page, &profile.Profile{Experiences: jobs()}, Options{})

	res := engine.FillExperience(context.Background())
	assert.Equal(t, 2, res.FilledCount)
	assert.Empty(t, res.Pending)
	assert.Equal(t, "Analytical Engines", valueByID(doc, "company"))
}

func TestEducationSections(t *testing.T) {
	t.Parallel()

	page := `<fieldset id="edu"><legend>Education</legend>
<input id="school"><input id="degree"><input id="graduationYear">
<label><input type="checkbox" name="enrolled"> Currently enrolled</label>
</fieldset>`
	p := &profile.Profile{Educations: []profile.Education{
		{Institution: "University of London", Degree: "BSc", FromDate: "2010-09", ToDate: "2014-06"},
	}}
	engine, doc := newReadyEngine(t, page, p, Options{})

	res := engine.FillEducation(context.Background())
	assert.Equal(t, 3, res.FilledCount)
	assert.Equal(t, "University of London", valueByID(doc, "school"))
	assert.Equal(t, "BSc", valueByID(doc, "degree"))
	assert.Equal(t, "2014", valueByID(doc, "graduationYear"))
}

// addJobOnClick appends a new experience section when the add control is clicked.
// With async set the section shows up later, the way a client-side framework renders it.
func addJobOnClick(doc *dom.Document, async time.Duration) *sync.WaitGroup {
	var wg sync.WaitGroup
	next := 1

	doc.On(dom.EventClick, func(d *dom.Document, ev dom.Event) {
		if dom.Attr(ev.Target, "id") != "add-job" {
			return
		}

		i := next
		next++
		appendSection := func(root *html.Node) {
			_ = dom.AppendHTML(dom.ByID(root, "jobs"), experienceSection(i))
		}

		if async == 0 {
			appendSection(d.Root())
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(async)
			d.Update(appendSection)
		}()
	})

	return &wg
}

const jobsWithAddButton = `<div id="jobs">%s</div><button id="add-job" type="button">+ Add experience</button>`

func TestAddSectionContinuation(t *testing.T) {
	t.Parallel()

	page := fmt.Sprintf(jobsWithAddButton, experienceSection(0))
	doc := parsePage(t, page)
	addJobOnClick(doc, 0)

	engine := New(doc, zap.NewNop(), Options{PollInterval: time.Millisecond, SectionTimeout: time.Second})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(&profile.Profile{Experiences: jobs()})))

	res := engine.FillExperience(context.Background())
	require.Len(t, res.Pending, 1)
	assert.Equal(t, SectionExperience, res.Pending[0].Kind())
	assert.Equal(t, 2, res.Pending[0].Pending())
	assert.Equal(t, "Engineer", valueByID(doc, "jobTitle-0"))

	out := res.Pending[0].Wait(context.Background())
	assert.Equal(t, 2, out.Requested)
	assert.Equal(t, 2, out.Created)
	assert.False(t, out.TimedOut)
	assert.NoError(t, out.Err)
	assert.Positive(t, out.Filled)

	assert.Equal(t, "Analyst", valueByID(doc, "jobTitle-1"))
	assert.Equal(t, "Intern", valueByID(doc, "jobTitle-2"))

	// Wait is settled after the first call.
	assert.Equal(t, out, res.Pending[0].Wait(context.Background()))
}

func TestAddSectionRendersAsynchronously(t *testing.T) {
	t.Parallel()

	page := fmt.Sprintf(jobsWithAddButton, experienceSection(0))
	doc := parsePage(t, page)
	wg := addJobOnClick(doc, 20*time.Millisecond)

	engine := New(doc, zap.NewNop(), Options{PollInterval: 5 * time.Millisecond, SectionTimeout: 5 * time.Second})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(&profile.Profile{Experiences: jobs()[:2]})))

	res := engine.FillExperience(context.Background())
	require.Len(t, res.Pending, 1)

	out := res.Pending[0].Wait(context.Background())
	wg.Wait()

	assert.Equal(t, 1, out.Created)
	assert.False(t, out.TimedOut)
	assert.Equal(t, "Babbage & Co", valueByID(doc, "company-1"))
}

func TestAddSectionTimesOut(t *testing.T) {
	t.Parallel()

	page := fmt.Sprintf(jobsWithAddButton, experienceSection(0))
	doc := parsePage(t, page)
	doc.On(dom.EventClick, func(*dom.Document, dom.Event) {})

	engine := New(doc, zap.NewNop(), Options{PollInterval: 5 * time.Millisecond, SectionTimeout: 30 * time.Millisecond})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(&profile.Profile{Experiences: jobs()[:2]})))

	res := engine.FillExperience(context.Background())
	require.True(t, res.Success)
	require.Len(t, res.Pending, 1)

	out := res.Pending[0].Wait(context.Background())
	assert.True(t, out.TimedOut)
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 0, out.Filled)
	assert.Equal(t, []string{dom.EventClick}, doc.EventsFor(nodeByID(doc, "add-job")))
}

func TestAddSectionStopsOnCancel(t *testing.T) {
	t.Parallel()

	page := fmt.Sprintf(jobsWithAddButton, experienceSection(0))
	doc := parsePage(t, page)
	doc.On(dom.EventClick, func(*dom.Document, dom.Event) {})

	engine := New(doc, zap.NewNop(), Options{PollInterval: 5 * time.Millisecond, SectionTimeout: time.Minute})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(&profile.Profile{Experiences: jobs()[:2]})))

	res := engine.FillExperience(context.Background())
	require.Len(t, res.Pending, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := res.Pending[0].Wait(ctx)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.False(t, out.TimedOut)
}

func TestNoAddControlMeansNoContinuation(t *testing.T) {
	t.Parallel()

	page := `<div id="jobs">` + experienceSection(0) + `</div>`
	engine, _ := newReadyEngine(t, page, &profile.Profile{Experiences: jobs()}, Options{})

	res := engine.FillExperience(context.Background())
	require.True(t, res.Success)
	assert.Empty(t, res.Pending)
}

func TestStaticPageSkipsAddSection(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	doc := parsePage(t, fmt.Sprintf(jobsWithAddButton, experienceSection(0)))

	engine := New(doc, zap.New(core), Options{SectionTimeout: time.Minute})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(&profile.Profile{Experiences: jobs()})))

	res := engine.FillExperience(context.Background())
	require.True(t, res.Success)
	assert.Empty(t, res.Pending)
	assert.Equal(t, "Engineer", valueByID(doc, "jobTitle-0"))
	assert.Empty(t, doc.EventsFor(nodeByID(doc, "add-job")))
	assert.Equal(t, 1, observed.FilterMessage("page cannot render new sections").Len())
}

func educationSection(i int) string {
	return fmt.Sprintf(`<div class="school" id="school-%[1]d"><h3>Education</h3>
<input id="school-name-%[1]d"><input id="degree-%[1]d">
</div>`, i)
}

func TestRepeatedSectionScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		page   string
		setup  func(doc *dom.Document)
		data   *profile.Profile
		fill   func(*Engine, context.Context) Result
		verify func(t *testing.T, doc *dom.Document, res Result)
	}{
		{
			name: "education section added through the add control",
			page: `<div id="schools">` + educationSection(0) + `</div><button id="add-school" type="button">+ Add education</button>`,
			setup: func(doc *dom.Document) {
				next := 1
				doc.On(dom.EventClick, func(d *dom.Document, ev dom.Event) {
					if dom.Attr(ev.Target, "id") != "add-school" {
						return
					}
					_ = dom.AppendHTML(dom.ByID(d.Root(), "schools"), educationSection(next))
					next++
				})
			},
			data: &profile.Profile{Educations: []profile.Education{
				{Institution: "University of London", Degree: "BSc"},
				{Institution: "Birkbeck", Degree: "MSc"},
			}},
			fill: (*Engine).FillEducation,
			verify: func(t *testing.T, doc *dom.Document, res Result) {
				require.Len(t, res.Pending, 1)
				assert.Equal(t, SectionEducation, res.Pending[0].Kind())

				out := res.Pending[0].Wait(context.Background())
				assert.Equal(t, 1, out.Created)
				assert.Equal(t, 2, out.Filled)
				assert.False(t, out.TimedOut)

				assert.Equal(t, "University of London", valueByID(doc, "school-name-0"))
				assert.Equal(t, "Birkbeck", valueByID(doc, "school-name-1"))
				assert.Equal(t, "MSc", valueByID(doc, "degree-1"))
			},
		},
		{
			name: "radio group stays inside its section",
			page: `<div id="jobs">
<div id="job-0"><h3>Work Experience</h3><input id="jobTitle-0">
<input type="radio" name="ongoing" id="current-0" value="true"><input type="radio" name="ongoing" id="past-0" value="false">
</div>
<div id="job-1"><h3>Work Experience</h3><input id="jobTitle-1">
<input type="radio" name="ongoing" id="current-1" value="true" checked><input type="radio" name="ongoing" id="past-1" value="false">
</div>
</div>`,
			data: &profile.Profile{Experiences: []profile.Experience{{Title: "Engineer", Current: true}}},
			fill: (*Engine).FillExperience,
			verify: func(t *testing.T, doc *dom.Document, res Result) {
				assert.Equal(t, 2, res.FilledCount)

				checked := map[string]bool{}
				doc.Update(func(root *html.Node) {
					for _, id := range []string{"current-0", "past-0", "current-1", "past-1"} {
						checked[id] = dom.Checked(dom.ByID(root, id))
					}
				})

				assert.True(t, checked["current-0"])
				assert.False(t, checked["past-0"])
				assert.True(t, checked["current-1"], "a radio of another section was unchecked")
				assert.False(t, checked["past-1"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parsePage(t, tt.page)
			if tt.setup != nil {
				tt.setup(doc)
			}

			engine := New(doc, zap.NewNop(), Options{PollInterval: time.Millisecond, SectionTimeout: time.Second})
			require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(tt.data)))

			res := tt.fill(engine, context.Background())
			require.True(t, res.Success)
			tt.verify(t, doc, res)
		})
	}
}

func TestFullNameCaption(t *testing.T) {
	t.Parallel()

	engine, doc := newReadyEngine(t, `<label for="n">Full Name</label><input id="n">`, ada(), Options{})

	res := engine.FillPersonal(context.Background())
	assert.Equal(t, 1, res.FilledCount)
	assert.Equal(t, "Ada Lovelace", valueByID(doc, "n"))
}

func TestFillSocial(t *testing.T) {
	t.Parallel()

	page := `<input id="linkedin">
<form class="links">
  <p>Social profiles</p>
  <div><span>Twitter profile</span><input type="text" id="s1"></div>
  <p>Both</p>
  <div><span>LinkedIn or Twitter profile</span><input type="text" id="s2"></div>
  <p>Anything else</p>
  <div><span>Other profile</span><input type="text" id="s3"></div>
</form>`
	p := &profile.Profile{SocialProfiles: profile.SocialProfiles{
		LinkedIn: "https://linkedin.com/in/ada",
		Twitter:  "https://x.com/ada",
	}}
	engine, doc := newReadyEngine(t, page, p, Options{})

	res := engine.FillSocial(context.Background())
	assert.Equal(t, 3, res.FilledCount)
	assert.Equal(t, "https://linkedin.com/in/ada", valueByID(doc, "linkedin"))
	assert.Equal(t, "https://x.com/ada", valueByID(doc, "s1"))
	assert.Equal(t, "https://linkedin.com/in/ada", valueByID(doc, "s2"))
	assert.Empty(t, valueByID(doc, "s3"))
}

func TestFieldLabel(t *testing.T) {
	t.Parallel()

	doc := parsePage(t, `
<label for="a">Website</label><input id="a">
<label>Portfolio <input id="b" value="x"></label>
<span>Blog</span><div><input id="c"></div>
<p>Elsewhere</p><div><span>Facebook</span><input id="d"></div>
<p>Nothing</p><div><input id="e"></div>`)
	root := doc.Root()

	want := map[string]string{"a": "Website", "b": "Portfolio", "c": "Blog", "d": "Facebook", "e": ""}
	for id, label := range want {
		assert.Equal(t, label, fieldLabel(root, dom.ByID(root, id)), id)
	}
}

const resumeData = "data:application/pdf;base64,JVBERg=="

func resumePage(accept string) string {
	return fmt.Sprintf(`<div class="upload"><p>Upload your resume</p><input type="file" id="cv" accept="%s"></div>`, accept)
}

func TestFillResume(t *testing.T) {
	t.Parallel()

	p := &profile.Profile{Resume: &profile.Resume{Name: "cv.pdf", Type: "application/pdf", Data: resumeData}}
	engine, doc := newReadyEngine(t, resumePage(".pdf,.doc"), p, Options{})

	res := engine.FillResume(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 1, res.FilledCount)

	cv := nodeByID(doc, "cv")
	files := doc.Files(cv)
	require.Len(t, files, 1)
	assert.Equal(t, "cv.pdf", files[0].Name)
	assert.Equal(t, []byte("%PDF"), files[0].Data)
	assert.Equal(t, []string{dom.EventChange}, doc.EventsFor(cv))
}

func TestFillResumeSkips(t *testing.T) {
	t.Parallel()

	good := &profile.Resume{Name: "cv.pdf", Type: "application/pdf", Data: resumeData}

	t.Run("blocked by the page", func(t *testing.T) {
		t.Parallel()

		engine, doc := newReadyEngine(t, resumePage(""), &profile.Profile{Resume: good}, Options{})
		doc.BlockFileAssignment = true

		res := engine.FillResume(context.Background())
		assert.True(t, res.Success)
		assert.Equal(t, 0, res.FilledCount)
		require.Len(t, res.Steps, 1)
		assert.NoError(t, res.Steps[0].Err)
	})

	t.Run("incompatible accept", func(t *testing.T) {
		t.Parallel()

		engine, _ := newReadyEngine(t, resumePage("image/*"), &profile.Profile{Resume: good}, Options{})

		res := engine.FillResume(context.Background())
		assert.Equal(t, 0, res.FilledCount)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		bad := &profile.Resume{Name: "cv.pdf", Type: "application/pdf", Data: "not a data uri"}
		p := ada()
		p.Resume = bad

		engine, _ := newReadyEngine(t, adaPage+resumePage(""), p, Options{})

		res := engine.FillAll(context.Background())
		assert.True(t, res.Success)
		assert.Equal(t, 3, res.FilledCount)

		var resumeReport StepReport
		for _, r := range res.Steps {
			if r.Name == StepResume {
				resumeReport = r
			}
		}
		assert.ErrorIs(t, resumeReport.Err, profile.ErrMalformedResume)
		assert.Equal(t, 0, resumeReport.Filled)
	})
}

func TestPanickingFieldDoesNotAbortPass(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	doc := parsePage(t, adaPage)
	doc.On(dom.EventInput, func(_ *dom.Document, ev dom.Event) {
		if dom.Attr(ev.Target, "id") == "firstName" {
			panic("framework exploded")
		}
	})

	engine := New(doc, zap.New(core), Options{})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(ada())))

	res := engine.FillPersonal(context.Background())
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.FilledCount)
	assert.Equal(t, "Lovelace", valueByID(doc, "lastName"))
	assert.Equal(t, "ada@x.com", valueByID(doc, "email"))
	assert.Equal(t, 1, observed.FilterMessage("field fill failed").Len())
}

func TestPanickingAddControlDoesNotAbortPass(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	doc := parsePage(t, `<input id="firstName">`+fmt.Sprintf(jobsWithAddButton, experienceSection(0)))
	doc.On(dom.EventClick, func(*dom.Document, dom.Event) {
		panic("add handler exploded")
	})

	p := ada()
	p.Experiences = jobs()[:2]

	engine := New(doc, zap.New(core), Options{})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(p)))

	res := engine.FillAll(context.Background())
	require.True(t, res.Success)
	assert.Empty(t, res.Pending)
	assert.Positive(t, res.FilledCount)
	assert.Equal(t, "Ada", valueByID(doc, "firstName"))
	assert.Equal(t, "Engineer", valueByID(doc, "jobTitle-0"))
	assert.Equal(t, 1, observed.FilterMessage("add control failed").Len())
}

func TestPanickingAddControlEndsContinuation(t *testing.T) {
	t.Parallel()

	doc := parsePage(t, fmt.Sprintf(jobsWithAddButton, experienceSection(0)))
	clicks := 0
	doc.On(dom.EventClick, func(d *dom.Document, _ dom.Event) {
		clicks++
		if clicks > 1 {
			panic("add handler exploded")
		}
		_ = dom.AppendHTML(dom.ByID(d.Root(), "jobs"), experienceSection(1))
	})

	engine := New(doc, zap.NewNop(), Options{PollInterval: time.Millisecond, SectionTimeout: time.Second})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(&profile.Profile{Experiences: jobs()})))

	res := engine.FillExperience(context.Background())
	require.Len(t, res.Pending, 1)

	out := res.Pending[0].Wait(context.Background())
	assert.Equal(t, 2, out.Requested)
	assert.Equal(t, 1, out.Created)
	assert.NoError(t, out.Err)
	assert.False(t, out.TimedOut)
	assert.Equal(t, "Analyst", valueByID(doc, "jobTitle-1"))
}

func TestFillAllLogsSteps(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	doc := parsePage(t, adaPage)

	engine := New(doc, zap.New(core), Options{Skip: []string{StepResume}})
	require.NoError(t, engine.Load(context.Background(), profile.NewMemoryStore(ada())))

	res := engine.FillAll(context.Background())
	require.Len(t, res.Steps, 5)
	assert.False(t, res.Steps[4].Enabled)
	assert.Equal(t, "skipped by configuration", res.Steps[4].Reason)

	steps := observed.FilterMessage("fill step").All()
	require.Len(t, steps, 4)

	ctx := steps[0].ContextMap()
	assert.Equal(t, "personal", ctx["name"])
	assert.Equal(t, int64(3), ctx["filled"])
	assert.Equal(t, "fillAll", ctx["action"])
	assert.Equal(t, "personal", ctx["category"])
	assert.NotEmpty(t, ctx["pass_id"])
	assert.Equal(t, "social", steps[3].ContextMap()["category"])

	assert.Equal(t, 1, observed.FilterMessage("fill step disabled").Len())
}
