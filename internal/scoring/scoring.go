// Package scoring rates saved jobs against the user's resume and preferences.
//
// A score is a weighted sum of independent factors. A factor applies only when its inputs exist on both the job
// and the user side, and contributes its full weight (or, for skills, the matching share of it) when they match.
// When no factor applies the engine returns a pseudo-random baseline: 60 to 79 if the user has skills, 50 to 79
// otherwise. That baseline gives unmatched jobs a high score and is kept for compatibility with stored rankings.
package scoring

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/desertthunder/rba/internal/models"
)

// Factor weights. They sum to 100.
const (
	SkillsWeight     = 40
	TitleWeight      = 30
	LocationWeight   = 15
	RemoteWeight     = 10
	ExperienceWeight = 5
)

// Factor names a scoring signal.
type Factor string

const (
	SkillsFactor     Factor = "skills"
	TitleFactor      Factor = "title"
	LocationFactor   Factor = "location"
	RemoteFactor     Factor = "remote"
	ExperienceFactor Factor = "experience"
)

// Rand is the random source used for fallback scores.
type Rand interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Contribution is the outcome of one applicable factor.
type Contribution struct {
	Factor Factor  `json:"factor"`
	Points float64 `json:"points"`
	Weight int     `json:"weight"`
}

// Result is a scored job.
type Result struct {
	Score     int            `json:"score"`
	Factors   int            `json:"factors"`
	Breakdown []Contribution `json:"breakdown"`
	Fallback  bool           `json:"fallback"`
}

// Engine computes match scores.
type Engine struct {
	rand Rand
}

// NewEngine creates an [Engine] drawing fallback scores from r. A nil r uses an unseeded PCG source.
func NewEngine(r Rand) *Engine {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rand: r}
}

// NewSeededEngine creates an [Engine] whose fallback scores are reproducible for a non-zero seed.
// A zero seed is random.
func NewSeededEngine(seed uint64) *Engine {
	if seed == 0 {
		return NewEngine(nil)
	}
	return NewEngine(rand.New(rand.NewPCG(seed, seed)))
}

// Score returns the match score of job in [0, 100].
func (e *Engine) Score(job models.Job, resume *models.Resume, prefs *models.Preferences) int {
	return e.Evaluate(job, resume, prefs).Score
}

// Evaluate scores job and reports which factors applied.
//
// User skills come from the resume when it lists any, else from the preferences.
func (e *Engine) Evaluate(job models.Job, resume *models.Resume, prefs *models.Preferences) Result {
	var (
		res   Result
		total float64
	)
	add := func(f Factor, weight int, points float64) {
		res.Factors++
		res.Breakdown = append(res.Breakdown, Contribution{Factor: f, Points: points, Weight: weight})
		total += points
	}

	skills := userSkills(resume, prefs)

	if len(skills) > 0 && len(job.Skills) > 0 {
		matching := 0
		for _, s := range job.Skills {
			if slices.ContainsFunc(skills, func(u string) bool { return overlaps(s, u) }) {
				matching++
			}
		}
		add(SkillsFactor, SkillsWeight, SkillsWeight*float64(matching)/float64(len(job.Skills)))
	}

	if prefs != nil && prefs.JobTitle != "" && job.Title != "" {
		add(TitleFactor, TitleWeight, points(overlaps(job.Title, prefs.JobTitle), TitleWeight))
	}

	if prefs != nil && prefs.Location != "" && job.Location != "" {
		add(LocationFactor, LocationWeight, points(overlaps(job.Location, prefs.Location), LocationWeight))
	}

	if prefs != nil && job.Remote != nil {
		add(RemoteFactor, RemoteWeight, points(prefs.Remote == *job.Remote, RemoteWeight))
	}

	if prefs != nil && prefs.ExperienceLevel != "" && job.ExperienceLevel != "" {
		add(ExperienceFactor, ExperienceWeight, points(prefs.ExperienceLevel == job.ExperienceLevel, ExperienceWeight))
	}

	if res.Factors == 0 {
		res.Fallback = true
		if len(skills) > 0 {
			res.Score = 60 + e.rand.IntN(20)
		} else {
			res.Score = 50 + e.rand.IntN(30)
		}
		return res
	}

	res.Score = min(100, max(0, int(math.Round(total))))
	return res
}

// Ranked pairs a job with its score.
type Ranked struct {
	Job    models.Job `json:"job"`
	Result Result     `json:"result"`
}

// Rank scores every job and orders them by descending score. Ties keep their saved order.
func (e *Engine) Rank(jobs []models.Job, resume *models.Resume, prefs *models.Preferences) []Ranked {
	ranked := make([]Ranked, 0, len(jobs))
	for _, j := range jobs {
		ranked = append(ranked, Ranked{Job: j, Result: e.Evaluate(j, resume, prefs)})
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Result.Score, a.Result.Score)
	})
	return ranked
}

// Label describes a score: Excellent from 80, Good from 60, Fair from 40.
func Label(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func userSkills(resume *models.Resume, prefs *models.Preferences) []string {
	if resume != nil && len(resume.Skills) > 0 {
		return resume.Skills
	}
	if prefs != nil {
		return prefs.Skills
	}
	return nil
}

// overlaps reports whether either string contains the other, ignoring case.
func overlaps(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func points(match bool, weight int) float64 {
	if match {
		return float64(weight)
	}
	return 0
}
