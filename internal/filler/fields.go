package filler

// Category groups the fields filled by one trigger action.
type Category string

const (
	CategoryPersonal   Category = "personal"
	CategoryExperience Category = "experience"
	CategoryEducation  Category = "education"
	CategorySocial     Category = "social"
	CategoryResume     Category = "resume"
)

// Key is one synonym of a field key list. Exact keys never match by substring;
// they are kept for generic words ("name", "to") that are contained in many unrelated ids.
type Key struct {
	Text  string
	Exact bool
}

func keys(texts ...string) []Key {
	result := make([]Key, 0, len(texts))
	for _, text := range texts {
		result = append(result, Key{Text: text})
	}
	return result
}

func exact(text string) Key {
	return Key{Text: text, Exact: true}
}

// Field maps one semantic field onto its ordered synonym list.
// Supporting a new site naming convention means appending keys here.
type Field struct {
	Name     string
	Category Category
	Keys     []Key
}

var (
	FieldFirstName = Field{Name: "firstName", Category: CategoryPersonal,
		Keys: keys("firstName", "first-name", "first_name", "fname", "givenname", "given-name")}
	FieldLastName = Field{Name: "lastName", Category: CategoryPersonal,
		Keys: keys("lastName", "last-name", "last_name", "lname", "surname", "family-name", "familyname")}
	FieldFullName = Field{Name: "fullName", Category: CategoryPersonal,
		Keys: append(keys("fullname", "full-name", "full_name", "full name"), exact("name"))}
	FieldEmail = Field{Name: "email", Category: CategoryPersonal,
		Keys: keys("email", "e-mail", "emailaddress", "email-address")}
	FieldConfirmEmail = Field{Name: "confirmEmail", Category: CategoryPersonal,
		Keys: keys("confirmEmail", "confirm-email", "email-confirm", "email_confirm", "verifyemail")}
	FieldCity = Field{Name: "city", Category: CategoryPersonal,
		Keys: keys("city", "town", "locality")}
	FieldPhone = Field{Name: "phone", Category: CategoryPersonal,
		Keys: keys("phone", "phoneNumber", "phone-number", "telephone", "mobile", "cell", "cellphone")}
	FieldMessage = Field{Name: "messageToHiringTeam", Category: CategoryPersonal,
		Keys: keys("coverletter", "cover-letter", "cover_letter", "message", "comments", "additional-info", "note", "notes")}
)

var (
	FieldJobTitle = Field{Name: "experience.title", Category: CategoryExperience,
		Keys: keys("jobTitle", "job-title", "title", "position", "role")}
	FieldCompany = Field{Name: "experience.company", Category: CategoryExperience,
		Keys: keys("company", "employer", "organization", "workplace", "firm")}
	FieldJobLocation = Field{Name: "experience.location", Category: CategoryExperience,
		Keys: keys("location", "city", "workLocation", "job-location", "office-location")}
	FieldJobDescription = Field{Name: "experience.description", Category: CategoryExperience,
		Keys: keys("description", "responsibilities", "duties", "achievements", "jobDescription")}
	FieldJobCurrent = Field{Name: "experience.current", Category: CategoryExperience,
		Keys: keys("current", "currentPosition", "present", "currentJob", "stillWorking", "currently-working")}
)

var (
	FieldInstitution = Field{Name: "education.institution", Category: CategoryEducation,
		Keys: keys("school", "institution", "university", "college", "institute", "schoolName")}
	FieldMajor = Field{Name: "education.major", Category: CategoryEducation,
		Keys: keys("major", "field", "fieldOfStudy", "course", "studyField", "specialization")}
	FieldDegree = Field{Name: "education.degree", Category: CategoryEducation,
		Keys: keys("degree", "qualification", "certification", "diploma", "degreeType")}
	FieldSchoolLocation = Field{Name: "education.location", Category: CategoryEducation,
		Keys: keys("location", "city", "campus", "schoolLocation")}
	FieldSchoolDescription = Field{Name: "education.description", Category: CategoryEducation,
		Keys: keys("description", "activities", "achievements", "projects", "educationDescription")}
	FieldStudyCurrent = Field{Name: "education.current", Category: CategoryEducation,
		Keys: keys("current", "currentStudent", "attending", "enrolled", "currentlyEnrolled", "inProgress")}
)

// dateFields names the full-date and month/year part fields of one period.
type dateFields struct {
	StartDate, StartMonth, StartYear Field
	EndDate, EndMonth, EndYear       Field
}

var experienceDates = dateFields{
	StartDate: Field{Name: "experience.startDate", Category: CategoryExperience,
		Keys: append(keys("startDate", "start-date", "fromDate", "dateFrom"), exact("from"))},
	StartMonth: Field{Name: "experience.startMonth", Category: CategoryExperience,
		Keys: keys("startMonth", "start-month", "fromMonth")},
	StartYear: Field{Name: "experience.startYear", Category: CategoryExperience,
		Keys: keys("startYear", "start-year", "fromYear")},
	EndDate: Field{Name: "experience.endDate", Category: CategoryExperience,
		Keys: append(keys("endDate", "end-date", "toDate", "dateTo"), exact("to"))},
	EndMonth: Field{Name: "experience.endMonth", Category: CategoryExperience,
		Keys: keys("endMonth", "end-month", "toMonth")},
	EndYear: Field{Name: "experience.endYear", Category: CategoryExperience,
		Keys: keys("endYear", "end-year", "toYear")},
}

var educationDates = dateFields{
	StartDate: Field{Name: "education.startDate", Category: CategoryEducation,
		Keys: append(keys("startDate", "start-date", "fromDate", "dateFrom", "enrollmentDate"), exact("from"))},
	StartMonth: Field{Name: "education.startMonth", Category: CategoryEducation,
		Keys: keys("startMonth", "start-month", "fromMonth")},
	StartYear: Field{Name: "education.startYear", Category: CategoryEducation,
		Keys: keys("startYear", "start-year", "fromYear")},
	EndDate: Field{Name: "education.endDate", Category: CategoryEducation,
		Keys: append(keys("endDate", "end-date", "toDate", "dateTo", "graduationDate"), exact("to"))},
	EndMonth: Field{Name: "education.endMonth", Category: CategoryEducation,
		Keys: keys("endMonth", "end-month", "toMonth", "graduationMonth")},
	EndYear: Field{Name: "education.endYear", Category: CategoryEducation,
		Keys: keys("endYear", "end-year", "toYear", "graduationYear")},
}

var (
	FieldLinkedIn = Field{Name: "social.linkedin", Category: CategorySocial,
		Keys: keys("linkedin", "linkedInUrl", "linkedinurl", "linkedin-url", "linkedin_url")}
	FieldFacebook = Field{Name: "social.facebook", Category: CategorySocial,
		Keys: keys("facebook", "facebookUrl", "facebookurl", "facebook-url", "facebook_url")}
	FieldTwitter = Field{Name: "social.twitter", Category: CategorySocial,
		Keys: append(keys("twitter", "twitterUrl", "twitterurl", "twitter-url", "twitter_url", "x-url"), exact("x"))}
	FieldWebsite = Field{Name: "social.website", Category: CategorySocial,
		Keys: keys("website", "webpage", "personalSite", "personal-site", "site", "portfolio")}
)

// Fields lists the whole table in fill order.
func Fields() []Field {
	return []Field{
		FieldFirstName, FieldLastName, FieldFullName, FieldEmail, FieldConfirmEmail,
		FieldCity, FieldPhone, FieldMessage,
		FieldJobTitle, FieldCompany, FieldJobLocation, FieldJobDescription,
		experienceDates.StartDate, experienceDates.StartMonth, experienceDates.StartYear,
		experienceDates.EndDate, experienceDates.EndMonth, experienceDates.EndYear,
		FieldJobCurrent,
		FieldInstitution, FieldMajor, FieldDegree, FieldSchoolLocation, FieldSchoolDescription,
		educationDates.StartDate, educationDates.StartMonth, educationDates.StartYear,
		educationDates.EndDate, educationDates.EndMonth, educationDates.EndYear,
		FieldStudyCurrent,
		FieldLinkedIn, FieldFacebook, FieldTwitter, FieldWebsite,
	}
}

// FieldsFor returns the table entries of one category.
func FieldsFor(c Category) []Field {
	result := make([]Field, 0)
	for _, f := range Fields() {
		if f.Category == c {
			result = append(result, f)
		}
	}
	return result
}
