package payload

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/shared"
	tu "github.com/desertthunder/rba/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hydrationJSON = `{
  "resumeName": "cv.pdf",
  "uploadedAt": "2025-03-14T09:00:00Z",
  "atsScore": 82,
  "atsBreakdown": {"missing_keywords": ["Kubernetes"], "professional_summary": "Engineer."},
  "skills": ["Go", "SQL"]
}`

const hydrationYAML = `
resumeName: cv.pdf
uploadedAt: "2025-03-14T09:00:00Z"
atsScore: 82
atsBreakdown:
  missing_keywords:
    - Kubernetes
  professional_summary: Engineer.
skills: [Go, SQL]
`

func TestFormatFromPath(t *testing.T) {
	tt := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "payload.json", want: JSON},
		{path: "payload.YAML", want: YAML},
		{path: "dir/jobs.yml", want: YAML},
		{path: "payload.txt", wantErr: true},
		{path: "payload", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatFromPath(tc.path)
			if tc.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeHydration(t *testing.T) {
	for name, tc := range map[string]struct {
		src    string
		format Format
	}{
		"json": {src: hydrationJSON, format: JSON},
		"yaml": {src: hydrationYAML, format: YAML},
	} {
		t.Run(name, func(t *testing.T) {
			p, err := DecodeHydration(strings.NewReader(tc.src), tc.format)
			require.NoError(t, err)

			assert.Equal(t, "cv.pdf", p.ResumeName)
			require.NotNil(t, p.ATSScore)
			assert.Equal(t, 82, *p.ATSScore)
			assert.Equal(t, []string{"Go", "SQL"}, p.Skills)
			assert.Equal(t, "Engineer.", p.ATSBreakdown["professional_summary"])
			assert.Equal(t, []any{"Kubernetes"}, p.ATSBreakdown["missing_keywords"])
		})
	}

	t.Run("unquoted yaml dates keep their text", func(t *testing.T) {
		src := "resumeName: cv.pdf\nuploadedAt: 2024-01-02\natsScore: 70\n"
		p, err := DecodeHydration(strings.NewReader(src), YAML)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-02", p.UploadedAt)

		src = "resumeName: cv.pdf\nuploadedAt: 2025-03-14T09:00:00Z\n"
		p, err = DecodeHydration(strings.NewReader(src), YAML)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-14T09:00:00Z", p.UploadedAt)
	})

	t.Run("empty object is valid but empty", func(t *testing.T) {
		p, err := DecodeHydration(strings.NewReader(`{}`), JSON)
		require.NoError(t, err)
		assert.True(t, p.IsEmpty())
	})
}

func TestDecodeHydrationErrors(t *testing.T) {
	tt := []struct {
		name   string
		src    string
		format Format
		field  string
	}{
		{name: "malformed json", src: `{"resumeName":`, format: JSON},
		{name: "malformed yaml", src: "resumeName: [unterminated", format: YAML},
		{name: "score out of range", src: `{"atsScore": 140}`, format: JSON, field: "atsScore"},
		{name: "fractional score", src: `{"atsScore": 7.5}`, format: JSON, field: "atsScore"},
		{name: "skills not strings", src: "skills: [1, {a: b}]", format: YAML, field: "skills.1"},
		{name: "not an object", src: `["cv.pdf"]`, format: JSON, field: "(root)"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeHydration(strings.NewReader(tc.src), tc.format)
			require.ErrorIs(t, err, shared.ErrInvalidPayload)

			if tc.field == "" {
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestDecodeJobs(t *testing.T) {
	t.Run("yaml list", func(t *testing.T) {
		src := `
- id: "1"
  title: Backend Engineer
  company: Acme
  remote: true
  skills: [Go, SQL]
- title: SRE
  company: Initech
  location: Berlin
`
		jobs, err := DecodeJobs(strings.NewReader(src), YAML)
		require.NoError(t, err)

		want := []models.Job{
			{ID: "1", Title: "Backend Engineer", Company: "Acme", Remote: models.BoolPtr(true), Skills: []string{"Go", "SQL"}},
			{Title: "SRE", Company: "Initech", Location: "Berlin"},
		}
		assert.Equal(t, want, jobs)
	})

	t.Run("unquoted posted date", func(t *testing.T) {
		src := `
- title: SRE
  company: Initech
  postedDate: 2024-01-02
`
		jobs, err := DecodeJobs(strings.NewReader(src), YAML)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "2024-01-02", jobs[0].PostedDate)
	})

	t.Run("missing company", func(t *testing.T) {
		_, err := DecodeJobs(strings.NewReader(`[{"title":"SRE"}]`), JSON)
		require.ErrorIs(t, err, shared.ErrInvalidPayload)
		assert.Contains(t, err.Error(), "company")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("hydration file", func(t *testing.T) {
		path := tu.MustWriteFile(t, dir, "payload.yaml", hydrationYAML)
		p, err := LoadHydration(path)
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", p.ResumeName)
	})

	t.Run("jobs file", func(t *testing.T) {
		path := tu.MustWriteFile(t, dir, "jobs.json", `[{"title":"SRE","company":"Initech"}]`)
		jobs, err := LoadJobs(path)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})

	t.Run("errors name the file", func(t *testing.T) {
		path := tu.MustWriteFile(t, dir, "bad.json", `{"atsScore":"high"}`)
		_, err := LoadHydration(path)
		require.ErrorIs(t, err, shared.ErrInvalidPayload)
		assert.Contains(t, err.Error(), "bad.json")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadJobs(dir + "/missing.json")
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrInvalidPayload)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadJobs(dir + "/jobs.csv")
		require.ErrorIs(t, err, shared.ErrInvalidPayload)
	})
}
