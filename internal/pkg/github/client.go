package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shardforge/worker/config"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// ErrInvalidRepoURL means the identifier did not contain an owner and a repo
// segment.
var ErrInvalidRepoURL = errors.New("invalid repository URL")

// AccessError means the repository is private or does not exist (provider
// returned 403 or 404).
type AccessError struct {
	Status int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("repository is private or inaccessible (status %d)", e.Status)
}

// UpstreamError means the provider answered with an unexpected status.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api returned unexpected status %d", e.Status)
}

const (
	maxSnippetFiles    = 8
	snippetMaxChars    = 800
	snippetConcurrency = 4
)

// snippetExtensions selects the files worth previewing in a prompt.
var snippetExtensions = []string{
	".py", ".js", ".ts", ".java", ".cpp", ".c", ".go", ".rs", ".php", ".rb",
	".json", ".yaml", ".yml",
}

// RepoContext is everything one pipeline invocation knows about a repository.
// Built once per request, never shared across requests.
type RepoContext struct {
	Owner       string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	Topics      []string
	License     string
	CloneURL    string
	HTMLURL     string
	Files       []string
	Snippets    map[string]string
}

// Client fetches repository metadata and file previews from the GitHub API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.GitHub.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.GitHub.APIURL, "/"),
		token:   cfg.GitHub.Token,
		client:  &http.Client{Timeout: timeout},
	}
}

// ParseRepoURL resolves owner and repo from the trailing two path segments of
// the identifier, stripping a .git suffix. Accepts full URLs as well as bare
// "owner/repo" identifiers.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	trimmed := strings.TrimSpace(repoURL)
	trimmed = strings.ReplaceAll(trimmed, ":", "/")
	parts := make([]string, 0, 8)
	for _, p := range strings.Split(trimmed, "/") {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	// drop scheme and host artifacts so "github.com/onlyrepo" does not pass
	// with the host as its owner
	if len(parts) > 0 && (parts[0] == "http" || parts[0] == "https") {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.Contains(parts[0], ".") {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, repoURL)
	}
	owner = parts[len(parts)-2]
	repo = strings.TrimSuffix(parts[len(parts)-1], ".git")
	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, repoURL)
	}
	return owner, repo, nil
}

// Collect gathers metadata, the root file listing and a bounded set of code
// snippet previews. Missing files degrade gracefully; only metadata failures
// abort.
func (c *Client) Collect(ctx context.Context, repoURL, token string) (*RepoContext, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	rc, err := c.fetchMetadata(ctx, owner, repo, token)
	if err != nil {
		return nil, err
	}

	rc.Files = c.fetchFileList(ctx, owner, repo, token)
	rc.Snippets = c.fetchSnippets(ctx, owner, repo, token, rc.Files)

	klog.V(6).Infof("collected context for %s/%s: files=%d snippets=%d",
		owner, repo, len(rc.Files), len(rc.Snippets))
	return rc, nil
}

type repoMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Topics      []string `json:"topics"`
	CloneURL    string   `json:"clone_url"`
	HTMLURL     string   `json:"html_url"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	License *struct {
		Name string `json:"name"`
	} `json:"license"`
}

func (c *Client) fetchMetadata(ctx context.Context, owner, repo, token string) (*RepoContext, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo), token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusForbidden || status == http.StatusNotFound {
		return nil, &AccessError{Status: status}
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Status: status}
	}

	var meta repoMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode repository metadata: %w", err)
	}

	rc := &RepoContext{
		Owner:       meta.Owner.Login,
		Name:        meta.Name,
		Description: meta.Description,
		Language:    meta.Language,
		Stars:       meta.Stars,
		Forks:       meta.Forks,
		Topics:      meta.Topics,
		CloneURL:    meta.CloneURL,
		HTMLURL:     meta.HTMLURL,
	}
	if meta.License != nil {
		rc.License = meta.License.Name
	}
	return rc, nil
}

type contentEntry struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// fetchFileList returns the root-level file names. Any failure degrades to an
// empty listing; the prompt just loses its file section.
func (c *Client) fetchFileList(ctx context.Context, owner, repo, token string) []string {
	body, status, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s/contents", c.baseURL, owner, repo), token)
	if err != nil || status != http.StatusOK {
		klog.V(6).Infof("file listing unavailable for %s/%s: status=%d err=%v", owner, repo, status, err)
		return nil
	}
	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.Type == "file" {
			files = append(files, e.Name)
		}
	}
	return files
}

// fetchSnippets pulls content previews for up to maxSnippetFiles code files.
// Fetches run concurrently; one file failing never cancels its siblings.
func (c *Client) fetchSnippets(ctx context.Context, owner, repo, token string, files []string) map[string]string {
	var candidates []string
	for _, f := range files {
		for _, ext := range snippetExtensions {
			if strings.HasSuffix(f, ext) {
				candidates = append(candidates, f)
				break
			}
		}
		if len(candidates) == maxSnippetFiles {
			break
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	results := make([]string, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snippetConcurrency)
	for i, name := range candidates {
		g.Go(func() error {
			snippet, err := c.fetchSnippet(gctx, owner, repo, name, token)
			if err != nil {
				klog.V(6).Infof("skipping snippet %s/%s/%s: %v", owner, repo, name, err)
				return nil
			}
			results[i] = snippet
			return nil
		})
	}
	g.Wait()

	snippets := make(map[string]string)
	for i, name := range candidates {
		if results[i] != "" {
			snippets[name] = results[i]
		}
	}
	return snippets
}

func (c *Client) fetchSnippet(ctx context.Context, owner, repo, name, token string) (string, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, name), token)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("status %d", status)
	}
	var entry contentEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return "", err
	}
	if entry.Type != "file" || entry.Content == "" {
		return "", fmt.Errorf("no file content")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(entry.Content, "\n", ""))
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(decoded))
	if content == "" || strings.HasPrefix(content, "#") {
		// empty or comment-only previews add nothing to the prompt
		return "", fmt.Errorf("no meaningful content")
	}
	if len(content) > snippetMaxChars {
		// back off to a rune boundary so the cut never leaves invalid UTF-8
		cut := snippetMaxChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return content, nil
}

func (c *Client) get(ctx context.Context, url, token string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
