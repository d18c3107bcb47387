package service

import (
	"strings"
	"testing"

	"github.com/shardforge/worker/internal/dto/generate"
	"github.com/shardforge/worker/internal/pkg/artifact"
)

func TestBuildReadmePrompt(t *testing.T) {
	req := readmeRequest(500)
	rc := sampleRepoContext()

	system, user := buildReadmePrompt(req, rc)

	if system != readmeSystemPrompt {
		t.Fatalf("unexpected system prompt: %q", system)
	}
	for _, want := range []string{
		rc.Name,
		rc.Description,
		req.UserInput.Description,
		req.UserInput.Features,
		artifact.OpeningMarker,
		"git clone " + rc.CloneURL,
		"main.go",
	} {
		if !strings.Contains(user, want) {
			t.Fatalf("readme prompt missing %q", want)
		}
	}
}

func TestBuildReadmePromptWithoutSnippets(t *testing.T) {
	rc := sampleRepoContext()
	rc.Snippets = nil

	_, user := buildReadmePrompt(readmeRequest(500), rc)

	if !strings.Contains(user, "No code snippets available") {
		t.Fatalf("expected the no-snippets fallback section")
	}
	if strings.Contains(user, "git clone") {
		t.Fatalf("clone instructions belong to the snippet section")
	}
}

func TestBuildReadmePromptDeterministic(t *testing.T) {
	rc := sampleRepoContext()
	rc.Snippets = map[string]string{
		"zeta.go":  "package zeta",
		"alpha.go": "package alpha",
		"mid.py":   "import os",
	}
	req := readmeRequest(500)

	_, first := buildReadmePrompt(req, rc)
	for i := 0; i < 20; i++ {
		_, again := buildReadmePrompt(req, rc)
		if again != first {
			t.Fatalf("prompt assembly must be deterministic")
		}
	}
	// snippet sections come out in filename order despite map iteration
	if strings.Index(first, "alpha.go") > strings.Index(first, "mid.py") ||
		strings.Index(first, "mid.py") > strings.Index(first, "zeta.go") {
		t.Fatalf("snippets not in stable order")
	}
}

func TestBuildIdeaPromptComplexityEstimates(t *testing.T) {
	cases := map[string]string{
		"beginner":     "1-2 weeks",
		"intermediate": "1-3 months",
		"advanced":     "3-6 months",
		"any":          "variable time commitment",
	}
	for complexity, estimate := range cases {
		req := &generate.IdeaRequest{Topic: "devtools", Skills: "Go", Complexity: complexity}
		_, user := buildIdeaPrompt(req)
		if !strings.Contains(user, estimate) {
			t.Fatalf("complexity %s: prompt missing estimate %q", complexity, estimate)
		}
		if !strings.Contains(user, "devtools") || !strings.Contains(user, "Go") {
			t.Fatalf("complexity %s: prompt missing verbatim hints", complexity)
		}
	}
}

func TestBuildCompetitivePromptOptionalSections(t *testing.T) {
	base := &generate.CompetitiveRequest{ProjectDescription: "an offline notes app"}
	_, user := buildCompetitivePrompt(base)
	if strings.Contains(user, "Competitors:") || strings.Contains(user, "Target Audience:") {
		t.Fatalf("empty optional hints must not produce prompt lines")
	}

	full := &generate.CompetitiveRequest{
		ProjectDescription: "an offline notes app",
		Competitors:        "Notion, Obsidian",
		TargetAudience:     "students",
	}
	_, user = buildCompetitivePrompt(full)
	if !strings.Contains(user, "Notion, Obsidian") || !strings.Contains(user, "students") {
		t.Fatalf("optional hints must be embedded verbatim")
	}
}

func TestBuildInsightsPromptCapsFileList(t *testing.T) {
	rc := sampleRepoContext()
	rc.Files = nil
	for i := 0; i < 30; i++ {
		rc.Files = append(rc.Files, strings.Repeat("f", i+1)+".go")
	}

	_, user := buildInsightsPrompt(rc)

	if strings.Contains(user, rc.Files[20]) {
		t.Fatalf("file list should be capped at 15 entries")
	}
	if !strings.Contains(user, rc.Files[14]) {
		t.Fatalf("capped list should keep the first 15 entries")
	}
}

func TestFormatSnippetsLanguageFences(t *testing.T) {
	out := formatSnippets(map[string]string{
		"main.go":  "package main",
		"Makefile": "all:",
	})
	if !strings.Contains(out, "```go\npackage main") {
		t.Fatalf("expected a go fence, got %q", out)
	}
	if !strings.Contains(out, "```text\nall:") {
		t.Fatalf("extensionless files fall back to a text fence, got %q", out)
	}
}
