// package models defines the data model for the job search state store
package models

import (
	"slices"
	"time"
)

// Collection identifies one independently persisted piece of state.
type Collection int

const (
	ProfileCollection Collection = iota
	ResumeCollection
	PreferencesCollection
	AnalysisCollection
	JobsCollection
	MetricsCollection
)

// Collections lists every collection in storage order.
var Collections = []Collection{
	ProfileCollection,
	ResumeCollection,
	PreferencesCollection,
	AnalysisCollection,
	JobsCollection,
	MetricsCollection,
}

// Key returns the storage key for the collection.
func (c Collection) Key() string {
	switch c {
	case ProfileCollection:
		return "rba_user"
	case ResumeCollection:
		return "rba_resume"
	case PreferencesCollection:
		return "rba_preferences"
	case AnalysisCollection:
		return "rba_analysis"
	case JobsCollection:
		return "rba_jobs"
	case MetricsCollection:
		return "rba_metrics"
	default:
		return ""
	}
}

func (c Collection) String() string {
	switch c {
	case ProfileCollection:
		return "profile"
	case ResumeCollection:
		return "resume"
	case PreferencesCollection:
		return "preferences"
	case AnalysisCollection:
		return "analysis"
	case JobsCollection:
		return "jobs"
	case MetricsCollection:
		return "metrics"
	default:
		return ""
	}
}

// ParseCollection resolves a collection by its name (profile, resume, ...).
func ParseCollection(name string) (Collection, bool) {
	for _, c := range Collections {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// Profile is the current user's account record.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfilePatch carries the fields of a partial [Profile] update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name  *string
	Email *string
}

// Apply shallow-merges the patch into p.
func (pp ProfilePatch) Apply(p Profile) Profile {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Email != nil {
		p.Email = *pp.Email
	}
	return p
}

// Resume is the uploaded resume together with its analysis results.
type Resume struct {
	Name                string         `json:"name"`
	FileName            string         `json:"fileName"`
	UploadedAt          string         `json:"uploadedAt,omitempty"`
	ATSScore            *int           `json:"atsScore,omitempty"`
	ATSBreakdown        map[string]any `json:"atsBreakdown,omitempty"`
	Skills              []string       `json:"skills"`
	MissingKeywords     []string       `json:"missingKeywords"`
	ProfessionalSummary string         `json:"professionalSummary"`
}

// Preferences holds the user's job search preferences.
type Preferences struct {
	JobTitle        string   `json:"jobTitle"`
	Location        string   `json:"location"`
	Remote          bool     `json:"remote"`
	SalaryRange     string   `json:"salaryRange"`
	ExperienceLevel string   `json:"experienceLevel"`
	Industries      []string `json:"industries"`
	Skills          []string `json:"skills"`
}

// PreferencesPatch carries the fields of a partial [Preferences] update.
//
// Nil pointers and nil slices are left unchanged; an empty non-nil slice clears the field.
type PreferencesPatch struct {
	JobTitle        *string
	Location        *string
	Remote          *bool
	SalaryRange     *string
	ExperienceLevel *string
	Industries      []string
	Skills          []string
}

// Apply shallow-merges the patch into p. Skills are deduplicated.
func (pp PreferencesPatch) Apply(p Preferences) Preferences {
	if pp.JobTitle != nil {
		p.JobTitle = *pp.JobTitle
	}
	if pp.Location != nil {
		p.Location = *pp.Location
	}
	if pp.Remote != nil {
		p.Remote = *pp.Remote
	}
	if pp.SalaryRange != nil {
		p.SalaryRange = *pp.SalaryRange
	}
	if pp.ExperienceLevel != nil {
		p.ExperienceLevel = *pp.ExperienceLevel
	}
	if pp.Industries != nil {
		p.Industries = slices.Clone(pp.Industries)
	}
	if pp.Skills != nil {
		p.Skills = UnionSkills(nil, pp.Skills)
	}
	return p
}

// Analysis is a snapshot of the latest resume analysis.
type Analysis struct {
	ATSScore   *int           `json:"atsScore,omitempty"`
	Breakdown  map[string]any `json:"breakdown,omitempty"`
	Skills     []string       `json:"skills"`
	AnalyzedAt string         `json:"analyzedAt,omitempty"`
}

// Job is a saved job record.
//
// ID is optional; records without one are identified by Title and Company.
type Job struct {
	ID              string   `json:"id,omitempty" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Company         string   `json:"company" yaml:"company"`
	Location        string   `json:"location,omitempty" yaml:"location"`
	Remote          *bool    `json:"remote,omitempty" yaml:"remote"`
	ExperienceLevel string   `json:"experienceLevel,omitempty" yaml:"experienceLevel"`
	Skills          []string `json:"skills,omitempty" yaml:"skills"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	URL             string   `json:"url,omitempty" yaml:"url"`
	Salary          string   `json:"salary,omitempty" yaml:"salary"`
	PostedDate      string   `json:"postedDate,omitempty" yaml:"postedDate"`
}

// SameAs reports whether j and other identify the same record: matching non-empty id, or matching title and company.
func (j Job) SameAs(other Job) bool {
	if other.ID != "" && j.ID == other.ID {
		return true
	}
	return j.Title == other.Title && j.Company == other.Company
}

// ContainsJob reports whether jobs already holds a record that is the same as job.
func ContainsJob(jobs []Job, job Job) bool {
	return slices.ContainsFunc(jobs, func(existing Job) bool { return existing.SameAs(job) })
}

// Metrics is the derived aggregate recomputed after Resume, Analysis and Jobs writes.
type Metrics struct {
	LastAnalysisDate *time.Time `json:"lastAnalysisDate"`
	TotalAnalyses    int        `json:"totalAnalyses"`
	ScoredAnalyses   int        `json:"scoredAnalyses"`
	AverageATSScore  float64    `json:"averageATSScore"`
	JobsFound        int        `json:"jobsFound"`
	ResumeUploaded   bool       `json:"resumeUploaded"`
}

// DefaultProfile returns an empty profile created at now.
func DefaultProfile(now time.Time) Profile {
	return Profile{CreatedAt: now}
}

// DefaultPreferences returns empty preferences with non-nil slices.
func DefaultPreferences() Preferences {
	return Preferences{Industries: []string{}, Skills: []string{}}
}

// DefaultMetrics returns zeroed metrics.
func DefaultMetrics() Metrics {
	return Metrics{}
}

// UnionSkills appends the skills of extra missing from base, preserving first-seen order.
// Comparison is case-sensitive. The result never aliases base.
func UnionSkills(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// HydrationPayload is an analysis result produced outside the store.
type HydrationPayload struct {
	ResumeName   string         `json:"resumeName,omitempty" yaml:"resumeName"`
	UploadedAt   string         `json:"uploadedAt,omitempty" yaml:"uploadedAt"`
	ATSScore     *int           `json:"atsScore,omitempty" yaml:"atsScore"`
	ATSBreakdown map[string]any `json:"atsBreakdown,omitempty" yaml:"atsBreakdown"`
	Skills       []string       `json:"skills,omitempty" yaml:"skills"`
}

// IsEmpty reports whether the payload carries nothing to import.
func (p *HydrationPayload) IsEmpty() bool {
	return p == nil || (p.ResumeName == "" && p.ATSScore == nil)
}

// Breakdown is the typed view of the fields read from an ATS breakdown.
type Breakdown struct {
	MissingKeywords     []string `mapstructure:"missing_keywords"`
	ProfessionalSummary string   `mapstructure:"professional_summary"`
	Strengths           []string `mapstructure:"strengths"`
	Weaknesses          []string `mapstructure:"weaknesses"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
