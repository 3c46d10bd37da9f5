package scoring

import (
	"testing"

	"github.com/desertthunder/rba/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// fixedRand always returns the same offset, clamped to n-1.
type fixedRand int

func (f fixedRand) IntN(n int) int { return min(int(f), n-1) }

func TestEvaluate(t *testing.T) {
	e := NewEngine(fixedRand(0))

	t.Run("weighted sum", func(t *testing.T) {
		job := models.Job{
			Title:    "Backend Engineer",
			Company:  "Acme",
			Location: "Remote",
			Remote:   models.BoolPtr(true),
			Skills:   []string{"Go", "SQL"},
		}
		resume := &models.Resume{Skills: []string{"Go", "Python"}}
		prefs := &models.Preferences{JobTitle: "Backend Engineer", Location: "Remote", Remote: true, ExperienceLevel: "Senior"}

		got := e.Evaluate(job, resume, prefs)

		want := Result{
			Score:   75,
			Factors: 4,
			Breakdown: []Contribution{
				{Factor: SkillsFactor, Points: 20, Weight: SkillsWeight},
				{Factor: TitleFactor, Points: 30, Weight: TitleWeight},
				{Factor: LocationFactor, Points: 15, Weight: LocationWeight},
				{Factor: RemoteFactor, Points: 10, Weight: RemoteWeight},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
		}
	})

	tt := []struct {
		name    string
		job     models.Job
		resume  *models.Resume
		prefs   *models.Preferences
		score   int
		factors int
	}{
		{
			name:    "applicable factors that miss still count",
			job:     models.Job{Title: "Designer", Location: "Berlin", Remote: models.BoolPtr(false), ExperienceLevel: "Junior"},
			prefs:   &models.Preferences{JobTitle: "Engineer", Location: "Paris", Remote: true, ExperienceLevel: "Senior"},
			score:   0,
			factors: 4,
		},
		{
			name:    "substring match either direction ignoring case",
			job:     models.Job{Title: "senior backend engineer", Location: "NYC"},
			prefs:   &models.Preferences{JobTitle: "Backend Engineer", Location: "nyc, ny"},
			score:   45,
			factors: 2,
		},
		{
			name:    "preference skills when resume has none",
			job:     models.Job{Skills: []string{"PostgreSQL", "Kubernetes", "Go"}},
			resume:  &models.Resume{},
			prefs:   &models.Preferences{Skills: []string{"sql"}},
			score:   13,
			factors: 1,
		},
		{
			name:    "resume skills take precedence",
			job:     models.Job{Skills: []string{"Rust"}},
			resume:  &models.Resume{Skills: []string{"Go"}},
			prefs:   &models.Preferences{Skills: []string{"Rust"}},
			score:   0,
			factors: 1,
		},
		{
			name:    "experience must match exactly",
			job:     models.Job{ExperienceLevel: "senior"},
			prefs:   &models.Preferences{ExperienceLevel: "Senior"},
			score:   0,
			factors: 1,
		},
		{
			name:    "all factors",
			job:     models.Job{Title: "Go Developer", Location: "Remote", Remote: models.BoolPtr(true), ExperienceLevel: "Mid", Skills: []string{"Go"}},
			resume:  &models.Resume{Skills: []string{"go"}},
			prefs:   &models.Preferences{JobTitle: "Go Developer", Location: "Remote", Remote: true, ExperienceLevel: "Mid"},
			score:   100,
			factors: 5,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Evaluate(tc.job, tc.resume, tc.prefs)
			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.factors, got.Factors)
			assert.False(t, got.Fallback)
		})
	}
}

func TestFallback(t *testing.T) {
	withSkills := &models.Resume{Skills: []string{"Go"}}
	empty := &models.Preferences{}

	t.Run("bounds", func(t *testing.T) {
		tt := []struct {
			name   string
			resume *models.Resume
			offset fixedRand
			want   int
		}{
			{name: "skills low", resume: withSkills, offset: 0, want: 60},
			{name: "skills high", resume: withSkills, offset: 100, want: 79},
			{name: "no skills low", resume: nil, offset: 0, want: 50},
			{name: "no skills high", resume: nil, offset: 100, want: 79},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				got := NewEngine(tc.offset).Evaluate(models.Job{}, tc.resume, empty)
				assert.Equal(t, tc.want, got.Score)
				assert.True(t, got.Fallback)
				assert.Zero(t, got.Factors)
			})
		}
	})

	t.Run("random source stays in range", func(t *testing.T) {
		e := NewSeededEngine(42)
		for range 500 {
			s := e.Score(models.Job{}, withSkills, empty)
			assert.GreaterOrEqual(t, s, 60)
			assert.Less(t, s, 80)

			s = e.Score(models.Job{}, nil, nil)
			assert.GreaterOrEqual(t, s, 50)
			assert.Less(t, s, 80)
		}
	})

	t.Run("seeded engines repeat", func(t *testing.T) {
		a, b := NewSeededEngine(7), NewSeededEngine(7)
		for range 20 {
			assert.Equal(t, a.Score(models.Job{}, nil, nil), b.Score(models.Job{}, nil, nil))
		}
	})

	t.Run("job skills without user skills", func(t *testing.T) {
		got := NewEngine(fixedRand(3)).Evaluate(models.Job{Skills: []string{"Go"}}, nil, empty)
		assert.True(t, got.Fallback)
		assert.Equal(t, 53, got.Score)
	})
}

func TestRank(t *testing.T) {
	e := NewEngine(fixedRand(0))
	prefs := &models.Preferences{JobTitle: "Engineer", Location: "Remote"}

	jobs := []models.Job{
		{ID: "1", Title: "Designer", Location: "Berlin"},
		{ID: "2", Title: "Engineer", Location: "Remote"},
		{ID: "3", Title: "Engineer", Location: "Berlin"},
		{ID: "4", Title: "Designer", Location: "Paris"},
	}

	ranked := e.Rank(jobs, nil, prefs)

	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.Job.ID)
	}
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids)
	assert.Equal(t, 45, ranked[0].Result.Score)
	assert.Empty(t, e.Rank(nil, nil, prefs))
}

func TestLabel(t *testing.T) {
	tt := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Fair"},
		{40, "Fair"},
		{39, "Needs Improvement"},
		{0, "Needs Improvement"},
	}

	for _, tc := range tt {
		assert.Equal(t, tc.want, Label(tc.score), "Label(%d)", tc.score)
	}
}
