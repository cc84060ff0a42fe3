package models

import "time"

// ToolCategory is the fixed set of AI tool listings.
type ToolCategory string

const (
	ToolTextGeneration  ToolCategory = "Text Generation"
	ToolImageGeneration ToolCategory = "Image Generation"
	ToolAudioVideo      ToolCategory = "Audio & Video"
	ToolProductivity    ToolCategory = "Productivity"
	ToolResearch        ToolCategory = "Research"
)

// ToolCategories lists every category.
func ToolCategories() []ToolCategory {
	return []ToolCategory{ToolTextGeneration, ToolImageGeneration, ToolAudioVideo, ToolProductivity, ToolResearch}
}

// RankChange describes movement since the previous listing.
type RankChange string

const (
	ChangeUp   RankChange = "up"
	ChangeDown RankChange = "down"
	ChangeSame RankChange = "same"
	ChangeNew  RankChange = "new"
)

type ToolStage string

const (
	StageBeta        ToolStage = "Beta"
	StageEarlyAccess ToolStage = "Early Access"
	StageLimitedBeta ToolStage = "Limited Beta"
	StagePublic      ToolStage = "Public"
)

// ToolGrades is the fixed set of five letter grades shown for a tool.
type ToolGrades struct {
	BarrierToEntry string `json:"Barrier to Entry"`
	Cost           string `json:"Cost"`
	Efficiency     string `json:"Efficiency"`
	Speed          string `json:"Speed"`
	Community      string `json:"Community"`
}

// AITool is a ranked entry in a tool listing.
type AITool struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    ToolCategory `json:"category"`
	URL         string       `json:"url"`
	LogoURL     string       `json:"logoUrl,omitempty"`
	Rank        int          `json:"rank"`
	Change      RankChange   `json:"change"`
	Grades      ToolGrades   `json:"grades"`
	GithubURL   string       `json:"githubUrl,omitempty"`
	Stars       int          `json:"stars,omitempty"`
	Forks       int          `json:"forks,omitempty"`
	LastCommit  *time.Time   `json:"lastCommit,omitempty"`
	Stage       ToolStage    `json:"stage,omitempty"`
	Noteworthy  string       `json:"noteworthy,omitempty"`
}
