package artifact

// RepoInsights is the repository-review artifact: constructive feedback on an
// existing codebase rather than generated content for it.
type RepoInsights struct {
	OverallAssessment   string   `json:"overall_assessment"`
	Strengths           []string `json:"strengths"`
	ImprovementAreas    []string `json:"improvement_areas"`
	ReadmeSuggestions   []string `json:"readme_suggestions"`
	PotentialUseCases   []string `json:"potential_use_cases"`
	TechnicalComplexity string   `json:"technical_complexity"`
	CodeQualityInsights []string `json:"code_quality_insights"`
}

func DecodeRepoInsights(raw []byte) (*RepoInsights, error) {
	var insights RepoInsights
	if err := decodeStrict(raw, &insights); err != nil {
		return nil, err
	}
	if insights.OverallAssessment == "" {
		return nil, schemaErrorf("overall_assessment", "field is required")
	}
	if len(insights.Strengths) == 0 {
		return nil, schemaErrorf("strengths", "array must be non-empty")
	}
	if len(insights.ImprovementAreas) == 0 {
		return nil, schemaErrorf("improvement_areas", "array must be non-empty")
	}
	if insights.TechnicalComplexity == "" {
		return nil, schemaErrorf("technical_complexity", "field is required")
	}
	return &insights, nil
}
