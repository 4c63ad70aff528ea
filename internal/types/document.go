// Package types provides type definitions for structured data used throughout the resume editor.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
)

// CurrentSchemaVersion is the schema tag stamped on every normalized document.
const CurrentSchemaVersion = 2

// Defaults applied when a document does not carry a value.
const (
	DefaultCountryCode = "US"
	DefaultJobCategory = "general"
	DefaultSeniority   = "mid"
)

// Document is a resume in the current schema shape.
// Field names follow the JSON Resume conventions the editor persists.
type Document struct {
	SchemaVersion int           `json:"schemaVersion"`
	Meta          Meta          `json:"meta"`
	Basics        Basics        `json:"basics"`
	Work          []Work        `json:"work"`
	Volunteer     []Volunteer   `json:"volunteer"`
	Education     []Education   `json:"education"`
	Projects      []Project     `json:"projects"`
	Awards        []Award       `json:"awards"`
	Certificates  []Certificate `json:"certificates"`
	Publications  []Publication `json:"publications"`
	Languages     []Language    `json:"languages"`
	Interests     []Interest    `json:"interests"`
	References    []Reference   `json:"references"`
	Skills        []string      `json:"skills"`
}

// Meta holds editor-level settings stored alongside the content
type Meta struct {
	JobCategory string `json:"jobCategory"`
	Seniority   string `json:"seniority"`
	Template    string `json:"template"`
}

// Basics is the header section of a resume
type Basics struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Image    string    `json:"image"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	URL      string    `json:"url"`
	Summary  string    `json:"summary"`
	Location Location  `json:"location"`
	Profiles []Profile `json:"profiles"`
}

// Location is a postal location
type Location struct {
	Address     string `json:"address"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
}

// Profile is a social or professional network link
type Profile struct {
	Network  string `json:"network"`
	Username string `json:"username"`
	URL      string `json:"url"`
}

// Work is one job entry. Description is pre-rendered rich text (HTML).
type Work struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Volunteer is one volunteering entry. Description is rich text.
type Volunteer struct {
	Organization string `json:"organization"`
	Position     string `json:"position"`
	URL          string `json:"url"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Description  string `json:"description"`
}

// Education is one education entry
type Education struct {
	Institution string   `json:"institution"`
	URL         string   `json:"url"`
	Area        string   `json:"area"`
	StudyType   string   `json:"studyType"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Score       string   `json:"score"`
	Courses     []string `json:"courses"`
}

// Project is one project entry. Description is rich text.
type Project struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Award is a recognition entry
type Award struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Awarder string `json:"awarder"`
	Summary string `json:"summary"`
}

// Certificate is a certification entry
type Certificate struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Issuer string `json:"issuer"`
	URL    string `json:"url"`
}

// Publication is a published work
type Publication struct {
	Name        string `json:"name"`
	Publisher   string `json:"publisher"`
	ReleaseDate string `json:"releaseDate"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
}

// Language is a spoken language with fluency
type Language struct {
	Language string `json:"language"`
	Fluency  string `json:"fluency"`
}

// Interest is a personal interest with optional keywords
type Interest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Reference is a professional reference
type Reference struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
}

// NewDocument returns an empty document in the current shape with defaults applied.
// Every list is non-nil so that a round trip through JSON yields an equal value.
func NewDocument() *Document {
	return &Document{
		SchemaVersion: CurrentSchemaVersion,
		Meta: Meta{
			JobCategory: DefaultJobCategory,
			Seniority:   DefaultSeniority,
		},
		Basics: Basics{
			Location: Location{CountryCode: DefaultCountryCode},
			Profiles: []Profile{},
		},
		Work:         []Work{},
		Volunteer:    []Volunteer{},
		Education:    []Education{},
		Projects:     []Project{},
		Awards:       []Award{},
		Certificates: []Certificate{},
		Publications: []Publication{},
		Languages:    []Language{},
		Interests:    []Interest{},
		References:   []Reference{},
		Skills:       []string{},
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		// Document contains only strings, ints and slices of them.
		panic("types: document clone: " + err.Error())
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		panic("types: document clone: " + err.Error())
	}
	return &out
}
