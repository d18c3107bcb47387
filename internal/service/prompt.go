package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shardforge/worker/internal/dto/generate"
	"github.com/shardforge/worker/internal/pkg/artifact"
	"github.com/shardforge/worker/internal/pkg/github"
)

// Prompt assembly is deterministic: each builder is a pure function of the
// typed request and the collected context. The structural contract the model
// must honor is spelled out inside the prompt itself; the validator enforces
// the same contract on the way back.

const readmeSystemPrompt = "You are a README generator that outputs only TipTap JSON. " +
	"Your entire output must be a single valid JSON object rooted at a \"doc\" node."

const ideaSystemPrompt = "You are a helpful assistant designed to output JSON. " +
	"Generate software project ideas based on the user's prompt. " +
	"Your entire output must be a single, valid JSON object with an 'ideas' key, " +
	"which contains an array of idea objects."

const stackSystemPrompt = "You are an expert full-stack developer specializing in modern " +
	"technologies. Provide detailed, practical tech stack recommendations as a single JSON object."

const competitiveSystemPrompt = "You are a strategic business analyst specializing in competitive " +
	"positioning and market analysis. Provide clear, actionable insights in JSON format."

const insightsSystemPrompt = "You are a senior software architect providing detailed technical " +
	"analysis. Focus on code quality, architecture patterns, and practical improvements. " +
	"Respond with a single JSON object."

// complexityTimeEstimates maps the requested complexity level to the
// completion-time phrase embedded in the idea prompt.
var complexityTimeEstimates = map[string]string{
	"beginner":     "1-2 weeks",
	"intermediate": "1-3 months",
	"advanced":     "3-6 months",
	"any":          "variable time commitment",
}

func buildReadmePrompt(req *generate.ReadmeRequest, rc *github.RepoContext) (system, user string) {
	var sb strings.Builder

	sb.WriteString("Create a self-contained, polished README for this repository as TipTap JSON.\n\n")

	sb.WriteString("Strict output contract (do not violate):\n")
	sb.WriteString("- Output exactly one JSON object of the form {\"type\": \"doc\", \"content\": [...]}. Never a top-level array.\n")
	sb.WriteString("- Allowed nodes: doc, heading (attrs.level 1-3 and attrs.textAlign left/center/right), ")
	sb.WriteString("paragraph (attrs.textAlign), bulletList, orderedList, listItem, codeBlock (attrs.language), ")
	sb.WriteString("hardBreak, table, tableRow, tableHeader, tableCell, text.\n")
	sb.WriteString("- Allowed marks on text: bold, italic, underline, code, highlight.\n")
	sb.WriteString("- Lists hold only listItem children; tables hold tableRow children with tableHeader/tableCell cells.\n")
	sb.WriteString("- A codeBlock holds exactly one unmarked text child and must declare its language.\n")
	sb.WriteString("- Do NOT use markdown syntax like **bold** or backticks; represent all formatting with TipTap marks.\n")
	sb.WriteString("- No commentary or text outside the JSON.\n\n")

	sb.WriteString("Opening requirement: the first node must be a paragraph whose first text node ")
	sb.WriteString(fmt.Sprintf("is marked with highlight and says exactly: %s\n\n", artifact.OpeningMarker))

	sb.WriteString("Quality bar:\n")
	sb.WriteString("- At least 230 words of paragraph text, clear and instructive, casual tone with proper capitalization.\n")
	sb.WriteString("- Sections (H1-H3) for Overview, Features, Installation, Usage, Code Explanation and a small component/role/file table.\n")
	sb.WriteString("- Before each code example, a short paragraph explaining what it does and when to use it.\n")
	sb.WriteString("- Use inline code marks only for short identifiers; real commands and code lines go into codeBlock nodes.\n")
	sb.WriteString("- Use bullet lists for scannability and hardBreak nodes where line breaks help.\n\n")

	sb.WriteString("Repository context:\n")
	sb.WriteString(fmt.Sprintf("- Repo name: %s\n", rc.Name))
	sb.WriteString(fmt.Sprintf("- Description: %s\n", rc.Description))
	sb.WriteString(fmt.Sprintf("- Primary language: %s\n", rc.Language))
	if len(rc.Topics) > 0 {
		sb.WriteString(fmt.Sprintf("- Topics: %s\n", strings.Join(rc.Topics, ", ")))
	}
	if rc.License != "" {
		sb.WriteString(fmt.Sprintf("- License: %s\n", rc.License))
	}
	sb.WriteString(fmt.Sprintf("- Files: %s\n", strings.Join(rc.Files, ", ")))
	sb.WriteString(fmt.Sprintf("- User description: %s\n", req.UserInput.Description))
	sb.WriteString(fmt.Sprintf("- Requested features: %s\n", req.UserInput.Features))
	sb.WriteString("\n")

	if len(rc.Snippets) > 0 {
		sb.WriteString("Important code snippets:\n")
		sb.WriteString(formatSnippets(rc.Snippets))
		sb.WriteString("\nCode integration requirements:\n")
		sb.WriteString("- Include at least 2-3 of the code examples above, each with a brief explanation.\n")
		sb.WriteString("- Use the exact file names and code content from the snippets.\n")
		if rc.CloneURL != "" {
			sb.WriteString(fmt.Sprintf("- Include clone instructions: git clone %s\n", rc.CloneURL))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No code snippets available; base the README on the metadata and file names.\n\n")
	}

	sb.WriteString("Remember: a single TipTap JSON object only, \"type\": \"doc\" at the top, ")
	sb.WriteString("rich formatting through marks, and no redundant filler about trivial steps.")

	return readmeSystemPrompt, sb.String()
}

func buildIdeaPrompt(req *generate.IdeaRequest) (system, user string) {
	timeEstimate, ok := complexityTimeEstimates[req.Complexity]
	if !ok {
		timeEstimate = complexityTimeEstimates["any"]
	}

	var sb strings.Builder
	sb.WriteString("Generate 10 software project ideas based on the following criteria:\n")
	sb.WriteString(fmt.Sprintf("- Topic/Interest: %s\n", req.Topic))
	sb.WriteString(fmt.Sprintf("- Required Skills: %s\n", req.Skills))
	sb.WriteString(fmt.Sprintf("- Complexity Level: %s\n", req.Complexity))
	sb.WriteString(fmt.Sprintf("- Estimated Completion Time: %s\n\n", timeEstimate))
	sb.WriteString("Return a JSON object with an \"ideas\" array whose objects have exactly these fields:\n")
	sb.WriteString("- title (string): a creative title\n")
	sb.WriteString("- description (string): a detailed description, 2-4+ sentences\n")
	sb.WriteString("- estimatedTime (string): an estimated completion time\n\n")
	sb.WriteString("You may suggest ideas involving technologies not listed in the user's skills; ")
	sb.WriteString("when additional skills are required, mention them in the description as: *Requires [Skill]*.\n")
	sb.WriteString("Avoid generic or overused ideas (to-do apps, calculators, blog platforms). ")
	sb.WriteString("Only suggest unique, creative projects that would stand out to technical people.")

	return ideaSystemPrompt, sb.String()
}

func buildStackPrompt(req *generate.StackRequest) (system, user string) {
	var sb strings.Builder
	sb.WriteString("Recommend a practical, production-ready technology stack for this project:\n\n")
	sb.WriteString(fmt.Sprintf("Project Type: %s\n", req.ProjectType))
	sb.WriteString(fmt.Sprintf("Key Requirements: %s\n", req.Requirements))
	sb.WriteString(fmt.Sprintf("Preferences: %s\n\n", req.Preferences))
	sb.WriteString("Rules:\n")
	sb.WriteString("- Tailor the stack directly to the project type: web apps get modern web stacks, ")
	sb.WriteString("mobile apps get mobile-first stacks (not web frameworks unless a PWA is asked for), ")
	sb.WriteString("small local tools get lightweight frameworks.\n")
	sb.WriteString("- Only modern, production-ready technologies actually used today.\n")
	sb.WriteString("- Exactly one clear recommendation per layer, never a list of options.\n")
	sb.WriteString("- Balance speed of development, scalability and maintainability.\n\n")
	sb.WriteString("Return a valid JSON object with exactly this structure:\n")
	sb.WriteString("{\"title\": string, \"frontend\": string, \"backend\": string, \"database\": string, ")
	sb.WriteString("\"authentication\": string, \"deployment\": string, \"reasoning\": string}")

	return stackSystemPrompt, sb.String()
}

func buildCompetitivePrompt(req *generate.CompetitiveRequest) (system, user string) {
	var sb strings.Builder
	sb.WriteString("Analyze the competitive positioning for the following project and provide a ")
	sb.WriteString("comprehensive analysis in JSON format with these exact keys:\n")
	sb.WriteString("- unique_value_proposition (array of strings)\n")
	sb.WriteString("- competitive_advantages (array of strings)\n")
	sb.WriteString("- target_audience_alignment (string)\n")
	sb.WriteString("- recommended_positioning (string)\n\n")
	sb.WriteString(fmt.Sprintf("Project Description: %s\n", req.ProjectDescription))
	if req.Competitors != "" {
		sb.WriteString(fmt.Sprintf("Competitors: %s\n", req.Competitors))
	}
	if req.TargetAudience != "" {
		sb.WriteString(fmt.Sprintf("Target Audience: %s\n", req.TargetAudience))
	}
	sb.WriteString("\nPlease provide:\n")
	sb.WriteString("1. 3-5 unique value propositions that differentiate this project\n")
	sb.WriteString("2. 3-5 competitive advantages compared to existing solutions\n")
	sb.WriteString("3. How the project aligns with and serves the target audience\n")
	sb.WriteString("4. Recommended market positioning strategy\n\n")
	sb.WriteString("Return only valid JSON without any additional text.")

	return competitiveSystemPrompt, sb.String()
}

func buildInsightsPrompt(rc *github.RepoContext) (system, user string) {
	var sb strings.Builder
	sb.WriteString("Analyze this GitHub repository and provide detailed, constructive feedback.\n\n")
	sb.WriteString("Repository overview:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", rc.Name))
	sb.WriteString(fmt.Sprintf("- Owner: %s\n", rc.Owner))
	sb.WriteString(fmt.Sprintf("- Description: %s\n", rc.Description))
	sb.WriteString(fmt.Sprintf("- Primary Language: %s\n", rc.Language))
	sb.WriteString(fmt.Sprintf("- Stars: %d\n", rc.Stars))
	sb.WriteString(fmt.Sprintf("- Forks: %d\n", rc.Forks))
	sb.WriteString(fmt.Sprintf("- Topics: %s\n", strings.Join(rc.Topics, ", ")))
	files := rc.Files
	if len(files) > 15 {
		files = files[:15]
	}
	sb.WriteString(fmt.Sprintf("- Key Files: %s\n\n", strings.Join(files, ", ")))

	if len(rc.Snippets) > 0 {
		sb.WriteString("Code snippets:\n")
		sb.WriteString(formatSnippets(rc.Snippets))
		sb.WriteString("\n")
	} else {
		sb.WriteString("No code snippets available.\n\n")
	}

	sb.WriteString("Provide a comprehensive analysis as a JSON object with exactly these keys:\n")
	sb.WriteString("{\"overall_assessment\": string, \"strengths\": [string], \"improvement_areas\": [string], ")
	sb.WriteString("\"readme_suggestions\": [string], \"potential_use_cases\": [string], ")
	sb.WriteString("\"technical_complexity\": \"low/medium/high/expert\", \"code_quality_insights\": [string]}\n\n")
	sb.WriteString("Be specific, technical, and base the feedback on what the code actually reveals ")
	sb.WriteString("about the project's purpose and quality.")

	return insightsSystemPrompt, sb.String()
}

// formatSnippets renders the snippet map in stable filename order so prompt
// assembly stays deterministic.
func formatSnippets(snippets map[string]string) string {
	names := make([]string, 0, len(snippets))
	for name := range snippets {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		language := "text"
		if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
			language = name[i+1:]
		}
		sb.WriteString(fmt.Sprintf("%s:\n```%s\n%s\n```\n", name, language, snippets[name]))
	}
	return sb.String()
}
