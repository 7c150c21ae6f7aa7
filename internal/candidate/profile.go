package candidate

import (
	"encoding/json"
	"strings"
)

// Profile is the structured view of a candidate extracted from a resume.
// It is produced once per interview and never mutated afterwards.
type Profile struct {
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	YearsOfExperience int       `json:"years_of_experience"`
	TechnicalSkills   []string  `json:"technical_skills"`
	SoftSkills        []string  `json:"soft_skills"`
	PrimaryDomain     string    `json:"primary_domain"`
	Projects          []Project `json:"projects"`

	// Error carries an explicit marker when profile extraction failed.
	// A profile with a non-empty Error has no usable fields.
	Error string `json:"error,omitempty"`
}

// Project describes a single project mentioned in the resume.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Failed creates a profile that carries only an extraction error marker.
func Failed(reason string) *Profile {
	return &Profile{Error: strings.TrimSpace(reason)}
}

// OK reports whether the profile was extracted successfully.
func (p *Profile) OK() bool {
	return p != nil && p.Error == ""
}

// JSON renders the profile as indented JSON for inclusion in prompts.
func (p *Profile) JSON() string {
	if p == nil {
		return "{}"
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(data)
}
