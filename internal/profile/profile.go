package profile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// FormDataKey is the single key the profile record is stored under.
const FormDataKey = "userData"

var ErrMalformedResume = errors.New("malformed resume data")

// Profile is the user's stored autofill record. The engine only reads it.
type Profile struct {
	PersonalInfo   PersonalInfo   `json:"personalInfo"`
	Experiences    []Experience   `json:"experiences,omitempty"`
	Educations     []Education    `json:"educations,omitempty"`
	SocialProfiles SocialProfiles `json:"socialProfiles"`
	Resume         *Resume        `json:"resume,omitempty"`
	LastUpdated    time.Time      `json:"lastUpdated,omitempty"`
}

type PersonalInfo struct {
	FirstName           string `json:"firstName,omitempty"`
	LastName            string `json:"lastName,omitempty"`
	Email               string `json:"email,omitempty"`
	ConfirmEmail        string `json:"confirmEmail,omitempty"`
	City                string `json:"city,omitempty"`
	Phone               string `json:"phone,omitempty"`
	MessageToHiringTeam string `json:"messageToHiringTeam,omitempty"`
}

// FullName is set only when both parts are known.
func (p PersonalInfo) FullName() string {
	if p.FirstName == "" || p.LastName == "" {
		return ""
	}

	return p.FirstName + " " + p.LastName
}

// ConfirmationEmail falls back to the primary email.
func (p PersonalInfo) ConfirmationEmail() string {
	if p.ConfirmEmail != "" {
		return p.ConfirmEmail
	}

	return p.Email
}

type Experience struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	FromDate    string `json:"fromDate,omitempty"`
	ToDate      string `json:"toDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
}

// EndDate is empty for a current position.
func (e Experience) EndDate() string {
	if e.Current {
		return ""
	}

	return e.ToDate
}

type Education struct {
	Institution string `json:"institution,omitempty"`
	Major       string `json:"major,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	FromDate    string `json:"fromDate,omitempty"`
	ToDate      string `json:"toDate,omitempty"`
	Current     bool   `json:"current,omitempty"`
}

// EndDate is empty while still enrolled.
func (e Education) EndDate() string {
	if e.Current {
		return ""
	}

	return e.ToDate
}

type SocialProfiles struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Facebook string `json:"facebook,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Resume is an opaque file payload stored as a data URI.
type Resume struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
	Data string `json:"data"`
}

// Decode returns the raw bytes of the data URI payload.
func (r *Resume) Decode() ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no resume", ErrMalformedResume)
	}

	header, payload, ok := strings.Cut(r.Data, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing data uri separator", ErrMalformedResume)
	}

	if !strings.HasSuffix(strings.ToLower(header), ";base64") {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResume, err)
		}
		return []byte(decoded), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResume, err)
		}
	}

	return data, nil
}

// Decode converts a loosely typed record (as stored by the options page) into a Profile.
func Decode(raw map[string]any) (*Profile, error) {
	var p Profile

	if updated, ok := raw["lastUpdated"].(string); ok && strings.TrimSpace(updated) == "" {
		delete(raw, "lastUpdated")
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return &p, nil
}
