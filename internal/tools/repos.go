package tools

import (
	"time"

	"github.com/bilgisen/cyberpress/internal/models"
)

// Repo is a tracked repository and how it is listed.
type Repo struct {
	Owner    string
	Name     string
	Display  string
	Category models.ToolCategory
	URL      string
}

func (r Repo) ID() string {
	return r.Owner + "-" + r.Name
}

func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// TrackedRepos is the default watch list.
func TrackedRepos() []Repo {
	return []Repo{
		{Owner: "openai", Name: "openai-python", Display: "OpenAI Python SDK", Category: models.ToolTextGeneration, URL: "https://openai.com"},
		{Owner: "anthropics", Name: "anthropic-sdk-typescript", Display: "Claude SDK", Category: models.ToolTextGeneration, URL: "https://claude.ai"},
		{Owner: "google", Name: "generative-ai-js", Display: "Gemini Pro", Category: models.ToolTextGeneration, URL: "https://gemini.google.com"},
		{Owner: "meta-llama", Name: "llama", Display: "Llama", Category: models.ToolTextGeneration, URL: "https://llama.meta.com"},
		{Owner: "microsoft", Name: "semantic-kernel", Display: "Semantic Kernel", Category: models.ToolProductivity},
		{Owner: "langchain-ai", Name: "langchain", Display: "LangChain", Category: models.ToolProductivity},
		{Owner: "nomic-ai", Name: "gpt4all", Display: "GPT4All", Category: models.ToolTextGeneration},
		{Owner: "ollama", Name: "ollama", Display: "Ollama", Category: models.ToolProductivity, URL: "https://ollama.com"},
	}
}

// emergingTools are curated early stage tools. Their grades are editorial
// and replace the computed ones.
func emergingTools(now time.Time) []models.AITool {
	return []models.AITool{
		{
			ID:          "cursor-ai",
			Name:        "Cursor AI",
			Description: "AI-powered code editor with predictive coding",
			Category:    models.ToolProductivity,
			URL:         "https://cursor.sh",
			Change:      models.ChangeNew,
			Grades:      models.ToolGrades{BarrierToEntry: "B+", Cost: "A", Efficiency: "A-", Speed: "A+", Community: "B"},
			Stage:       models.StageBeta,
			Noteworthy:  "Revolutionary autocomplete that predicts entire functions",
			Stars:       2500,
			Forks:       180,
			LastCommit:  &now,
		},
		{
			ID:          "perplexity-spaces",
			Name:        "Perplexity Spaces",
			Description: "Collaborative AI research workspace",
			Category:    models.ToolResearch,
			URL:         "https://perplexity.ai",
			Change:      models.ChangeNew,
			Grades:      models.ToolGrades{BarrierToEntry: "A-", Cost: "B+", Efficiency: "A", Speed: "A-", Community: "B+"},
			Stage:       models.StageEarlyAccess,
			Noteworthy:  "Real-time fact-checking with source verification",
			Stars:       890,
			Forks:       67,
			LastCommit:  &now,
		},
		{
			ID:          "runway-gen3",
			Name:        "Runway Gen-3",
			Description: "Next-generation video AI model",
			Category:    models.ToolAudioVideo,
			URL:         "https://runwayml.com",
			Change:      models.ChangeNew,
			Grades:      models.ToolGrades{BarrierToEntry: "C+", Cost: "C", Efficiency: "A+", Speed: "B+", Community: "A-"},
			Stage:       models.StageLimitedBeta,
			Noteworthy:  "Photorealistic video generation from text prompts",
			Stars:       450,
			Forks:       34,
			LastCommit:  &now,
		},
	}
}
