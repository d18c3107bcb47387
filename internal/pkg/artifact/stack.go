package artifact

// StackPlan is the technology-stack artifact. One concrete pick per layer,
// never a list of alternatives.
type StackPlan struct {
	Title          string `json:"title"`
	Frontend       string `json:"frontend"`
	Backend        string `json:"backend"`
	Database       string `json:"database"`
	Authentication string `json:"authentication"`
	Deployment     string `json:"deployment"`
	Reasoning      string `json:"reasoning"`
}

func DecodeStackPlan(raw []byte) (*StackPlan, error) {
	var plan StackPlan
	if err := decodeStrict(raw, &plan); err != nil {
		return nil, err
	}
	required := map[string]string{
		"title":          plan.Title,
		"frontend":       plan.Frontend,
		"backend":        plan.Backend,
		"database":       plan.Database,
		"authentication": plan.Authentication,
		"deployment":     plan.Deployment,
		"reasoning":      plan.Reasoning,
	}
	for key, val := range required {
		if val == "" {
			return nil, schemaErrorf(key, "field is required")
		}
	}
	return &plan, nil
}
