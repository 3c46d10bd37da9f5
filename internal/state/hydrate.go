package state

import (
	"github.com/desertthunder/rba/internal/models"
	"github.com/mitchellh/mapstructure"
)

// Hydrate imports an analysis produced outside the store.
//
// A nil or empty payload is ignored. A payload with a resume name or a score replaces the Resume; a payload with
// a score also replaces the Analysis and then merges its skills into the preferred skills.
func (c *Container) Hydrate(payload *models.HydrationPayload) error {
	if payload.IsEmpty() {
		c.logger.Debug("nothing to hydrate")
		return nil
	}

	breakdown := decodeBreakdown(payload.ATSBreakdown)
	resume := models.Resume{
		Name:                payload.ResumeName,
		FileName:            payload.ResumeName,
		UploadedAt:          payload.UploadedAt,
		ATSScore:            payload.ATSScore,
		ATSBreakdown:        payload.ATSBreakdown,
		Skills:              payload.Skills,
		MissingKeywords:     breakdown.MissingKeywords,
		ProfessionalSummary: breakdown.ProfessionalSummary,
	}
	if resume.MissingKeywords == nil {
		resume.MissingKeywords = []string{}
	}
	if err := c.SetResume(resume); err != nil {
		return err
	}

	if payload.ATSScore == nil {
		return nil
	}

	analysis := models.Analysis{
		ATSScore:   payload.ATSScore,
		Breakdown:  payload.ATSBreakdown,
		Skills:     payload.Skills,
		AnalyzedAt: payload.UploadedAt,
	}
	if err := c.SetAnalysis(analysis); err != nil {
		return err
	}

	skills := models.UnionSkills(c.Preferences().Skills, payload.Skills)
	if _, err := c.UpdatePreferences(models.PreferencesPatch{Skills: skills}); err != nil {
		return err
	}

	c.logger.Info("hydrated analysis", "resume", payload.ResumeName, "score", *payload.ATSScore)
	return nil
}

// decodeBreakdown reads the known fields of an ATS breakdown. Fields of the wrong shape are left empty.
func decodeBreakdown(raw map[string]any) models.Breakdown {
	var b models.Breakdown
	if raw == nil {
		return b
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &b,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return b
	}
	if err := dec.Decode(raw); err != nil {
		return models.Breakdown{
			MissingKeywords:     stringSlice(raw["missing_keywords"]),
			ProfessionalSummary: stringValue(raw["professional_summary"]),
		}
	}
	return b
}

func stringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
