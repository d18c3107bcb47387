package artifact

// CompetitiveAnalysis is the market-positioning artifact.
type CompetitiveAnalysis struct {
	UniqueValueProposition  []string `json:"unique_value_proposition"`
	CompetitiveAdvantages   []string `json:"competitive_advantages"`
	TargetAudienceAlignment string   `json:"target_audience_alignment"`
	RecommendedPositioning  string   `json:"recommended_positioning"`
}

func DecodeCompetitiveAnalysis(raw []byte) (*CompetitiveAnalysis, error) {
	var analysis CompetitiveAnalysis
	if err := decodeStrict(raw, &analysis); err != nil {
		return nil, err
	}
	if len(analysis.UniqueValueProposition) == 0 {
		return nil, schemaErrorf("unique_value_proposition", "array must be non-empty")
	}
	if len(analysis.CompetitiveAdvantages) == 0 {
		return nil, schemaErrorf("competitive_advantages", "array must be non-empty")
	}
	if analysis.TargetAudienceAlignment == "" {
		return nil, schemaErrorf("target_audience_alignment", "field is required")
	}
	if analysis.RecommendedPositioning == "" {
		return nil, schemaErrorf("recommended_positioning", "field is required")
	}
	return &analysis, nil
}
