// Package generate holds the request shapes the routing layer binds for the
// generation endpoints. The caller-declared credit quota arrives alongside
// each request body.
package generate

// UserInput carries the free-text hints the caller attaches to a README run.
type UserInput struct {
	Description string `json:"description"`
	Features    string `json:"features"`
}

// Metadata identifies the caller's project; echoed into logs only.
type Metadata struct {
	UserID      string `json:"user_id" binding:"required"`
	ProjectName string `json:"project_name" binding:"required"`
}

type ReadmeRequest struct {
	GithubRepo  string    `json:"github_repo" binding:"required"`
	UserInput   UserInput `json:"user_input"`
	ShardID     string    `json:"shard_id" binding:"required"`
	Metadata    Metadata  `json:"metadata" binding:"required"`
	GithubToken string    `json:"github_token"`
	Credits     int       `json:"credits"`
}

type IdeaRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Skills     string `json:"skills" binding:"required"`
	Complexity string `json:"complexity" binding:"required,oneof=beginner intermediate advanced any"`
	Credits    int    `json:"credits"`
}

type StackRequest struct {
	ProjectType  string `json:"project_type" binding:"required"`
	Requirements string `json:"requirements" binding:"required"`
	Preferences  string `json:"preferences" binding:"required"`
	Credits      int    `json:"credits"`
}

type CompetitiveRequest struct {
	ProjectDescription string `json:"project_description" binding:"required"`
	Competitors        string `json:"competitors"`
	TargetAudience     string `json:"target_audience"`
	Credits            int    `json:"credits"`
}

type InsightsRequest struct {
	GithubRepo  string `json:"github_repo" binding:"required"`
	GithubToken string `json:"github_token"`
	Credits     int    `json:"credits"`
}
