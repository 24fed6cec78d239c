package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
	"trendpulse/internal/pool"
)

const githubAPIURL = "https://api.github.com"

// trackedRepos are the repositories whose releases feed the P1 tier.
var trackedRepos = []string{
	"openai/openai-python",
	"anthropics/anthropic-sdk-python",
	"langchain-ai/langchain",
	"ollama/ollama",
	"ggml-org/llama.cpp",
	"huggingface/transformers",
	"vllm-project/vllm",
}

// curatedListing is the markdown news-listing folder mined for P0 links.
var curatedListing = struct {
	Owner, Repo, Path string
}{"dair-ai", "ML-Papers-of-the-Week", "/"}

// socialDomains are skipped when mining markdown listings; their links are
// discussion threads, not articles.
var socialDomains = map[string]struct{}{
	"twitter.com":   {},
	"x.com":         {},
	"facebook.com":  {},
	"instagram.com": {},
	"threads.net":   {},
	"discord.gg":    {},
	"discord.com":   {},
}

// githubHeaders returns the REST v3 headers. The token is required; the
// adapters are skipped entirely when it is absent.
func githubHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization":        "Bearer " + token,
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
}

// --- search adapter ---------------------------------------------------------

// GitHubSearchAdapter collects recently created AI repositories.
type GitHubSearchAdapter struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGitHubSearchAdapter builds the adapter; token must be non-empty.
func NewGitHubSearchAdapter(token string) *GitHubSearchAdapter {
	return &GitHubSearchAdapter{client: newHTTPClient(10 * time.Second), baseURL: githubAPIURL, token: token}
}

// NewGitHubSearchAdapterWithBaseURL is used by tests.
func NewGitHubSearchAdapterWithBaseURL(token, baseURL string) *GitHubSearchAdapter {
	a := NewGitHubSearchAdapter(token)
	a.baseURL = baseURL
	return a
}

// Name implements Adapter.
func (a *GitHubSearchAdapter) Name() string { return "github-search" }

type githubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		CreatedAt   string `json:"created_at"`
		PushedAt    string `json:"pushed_at"`
	} `json:"items"`
}

// Collect searches repositories created inside the window.
func (a *GitHubSearchAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	params := url.Values{}
	params.Set("q", fmt.Sprintf("topic:llm created:>%s", cutoff.Format("2006-01-02")))
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", "30")

	var decoded githubSearchResponse
	err := getJSON(ctx, a.client, a.baseURL+"/search/repositories?"+params.Encode(), githubHeaders(a.token), &decoded)
	if err != nil {
		logger.Warn("github search failed", "error", err.Error())
		return nil
	}

	var items []core.Item
	for _, repo := range decoded.Items {
		created, err := time.Parse(time.RFC3339, repo.CreatedAt)
		if err != nil {
			continue
		}
		item := core.Item{
			Title:        repo.FullName,
			Link:         repo.HTMLURL,
			PublishedAt:  created.UTC(),
			Summary:      truncateSummary(repo.Description),
			SourceDomain: "github.com",
			FeedTitle:    "GitHub Search",
			Tier:         core.TierCommunity,
			Lang:         "en",
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	}
	return items
}

// --- releases adapter -------------------------------------------------------

// GitHubReleasesAdapter collects the latest releases of tracked repos.
type GitHubReleasesAdapter struct {
	client  *http.Client
	baseURL string
	token   string
	repos   []string
}

// NewGitHubReleasesAdapter builds the adapter over the tracked repo list.
func NewGitHubReleasesAdapter(token string) *GitHubReleasesAdapter {
	return &GitHubReleasesAdapter{
		client:  newHTTPClient(10 * time.Second),
		baseURL: githubAPIURL,
		token:   token,
		repos:   trackedRepos,
	}
}

// NewGitHubReleasesAdapterWithBaseURL is used by tests.
func NewGitHubReleasesAdapterWithBaseURL(token, baseURL string, repos []string) *GitHubReleasesAdapter {
	a := NewGitHubReleasesAdapter(token)
	a.baseURL = baseURL
	a.repos = repos
	return a
}

// Name implements Adapter.
func (a *GitHubReleasesAdapter) Name() string { return "github-releases" }

type githubRelease struct {
	Name        string `json:"name"`
	TagName     string `json:"tag_name"`
	HTMLURL     string `json:"html_url"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
}

// Collect fans out over the tracked repos, keeping releases in the window.
func (a *GitHubReleasesAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	perRepo, errs := pool.Map(ctx, a.repos, 4, func(ctx context.Context, repo string) ([]core.Item, error) {
		return a.collectRepo(ctx, repo, cutoff)
	})
	for i, err := range errs {
		if err != nil {
			logger.Warn("github releases fetch failed", "repo", a.repos[i], "error", err.Error())
		}
	}

	var items []core.Item
	for _, repoItems := range perRepo {
		items = append(items, repoItems...)
	}
	return items
}

func (a *GitHubReleasesAdapter) collectRepo(ctx context.Context, repo string, cutoff time.Time) ([]core.Item, error) {
	var releases []githubRelease
	endpoint := fmt.Sprintf("%s/repos/%s/releases?per_page=5", a.baseURL, repo)
	if err := getJSON(ctx, a.client, endpoint, githubHeaders(a.token), &releases); err != nil {
		// A repo without releases answers 404; that is an empty result,
		// not a failure.
		if strings.Contains(err.Error(), "status 404") {
			return nil, nil
		}
		return nil, err
	}

	var items []core.Item
	for _, rel := range releases {
		published, err := time.Parse(time.RFC3339, rel.PublishedAt)
		if err != nil {
			continue
		}
		title := rel.Name
		if title == "" {
			title = rel.TagName
		}
		shortRepo := repo
		if idx := strings.LastIndex(repo, "/"); idx >= 0 {
			shortRepo = repo[idx+1:]
		}
		item := core.Item{
			Title:        fmt.Sprintf("%s %s", shortRepo, title),
			Link:         rel.HTMLURL,
			PublishedAt:  published.UTC(),
			Summary:      truncateSummary(rel.Body),
			SourceDomain: "github.com",
			FeedTitle:    repo,
			Tier:         core.TierP1Context,
			Lang:         "en",
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	}
	return items, nil
}

// --- markdown listing adapter -----------------------------------------------

// GitHubMarkdownAdapter mines a curated markdown news-listing repo for
// dated files and extracts their [title](url) links as P0 items.
type GitHubMarkdownAdapter struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGitHubMarkdownAdapter builds the markdown listing adapter.
func NewGitHubMarkdownAdapter(token string) *GitHubMarkdownAdapter {
	return &GitHubMarkdownAdapter{client: newHTTPClient(15 * time.Second), baseURL: githubAPIURL, token: token}
}

// NewGitHubMarkdownAdapterWithBaseURL is used by tests.
func NewGitHubMarkdownAdapterWithBaseURL(token, baseURL string) *GitHubMarkdownAdapter {
	a := NewGitHubMarkdownAdapter(token)
	a.baseURL = baseURL
	return a
}

// Name implements Adapter.
func (a *GitHubMarkdownAdapter) Name() string { return "github-markdown" }

type githubContent struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}

var (
	fileDateRe = regexp.MustCompile(`(\d{4})[-_.]?(\d{2})[-_.]?(\d{2})`)
	mdLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
)

// Collect lists the configured folder, downloads the latest dated files in
// the window (up to 3) and extracts their markdown links.
func (a *GitHubMarkdownAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents%s",
		a.baseURL, curatedListing.Owner, curatedListing.Repo, curatedListing.Path)
	var contents []githubContent
	if err := getJSON(ctx, a.client, endpoint, githubHeaders(a.token), &contents); err != nil {
		logger.Warn("github markdown listing failed", "error", err.Error())
		return nil
	}

	type datedFile struct {
		content githubContent
		date    time.Time
	}
	var candidates []datedFile
	for _, c := range contents {
		if !strings.HasSuffix(c.Name, ".md") || c.DownloadURL == "" {
			continue
		}
		date, ok := dateFromFilename(c.Name)
		if !ok || date.Before(cutoff.Truncate(24*time.Hour)) {
			continue
		}
		candidates = append(candidates, datedFile{content: c, date: date})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].date.After(candidates[j].date) })
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	var items []core.Item
	for _, cand := range candidates {
		body, err := getText(ctx, a.client, cand.content.DownloadURL, githubHeaders(a.token))
		if err != nil {
			logger.Warn("github markdown download failed", "file", cand.content.Name, "error", err.Error())
			continue
		}
		items = append(items, extractMarkdownItems(body, cand.content.Name, cand.date)...)
	}
	return items
}

// dateFromFilename extracts a YYYYMMDD date embedded in a listing filename.
func dateFromFilename(name string) (time.Time, bool) {
	m := fileDateRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", m[1]+m[2]+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// extractMarkdownItems pulls [title](url) pairs out of a listing file,
// skipping social-domain links.
func extractMarkdownItems(body, feedTitle string, published time.Time) []core.Item {
	var items []core.Item
	for _, m := range mdLinkRe.FindAllStringSubmatch(body, -1) {
		title, link := strings.TrimSpace(m[1]), m[2]
		domain := extractDomain(link)
		if _, social := socialDomains[domain]; social || domain == "" {
			continue
		}
		if title == "" {
			continue
		}
		items = append(items, core.Item{
			Title:        title,
			Link:         link,
			PublishedAt:  published,
			SourceDomain: domain,
			FeedTitle:    feedTitle,
			Tier:         core.TierP0Curated,
			Lang:         langFor(title),
		})
	}
	return items
}

// getText issues a GET and returns the body as a string.
func getText(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	// Listing files are small; 2MB is a generous hard bound.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}
