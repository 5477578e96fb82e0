package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGistAPI = "https://api.github.com"

// GistBackend stores every collection as a <name>.json file of one GitHub Gist.
type GistBackend struct {
	gistID      string
	githubToken string
	baseURL     string
	httpClient  *http.Client
}

func NewGistBackend(gistID, githubToken string, httpClient *http.Client) *GistBackend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &GistBackend{
		gistID:      gistID,
		githubToken: githubToken,
		baseURL:     defaultGistAPI,
		httpClient:  httpClient,
	}
}

// WithBaseURL points the backend at another API root (GitHub Enterprise, tests).
func (g *GistBackend) WithBaseURL(baseURL string) *GistBackend {
	g.baseURL = baseURL
	return g
}

func (g *GistBackend) url() string {
	return fmt.Sprintf("%s/gists/%s", g.baseURL, g.gistID)
}

// gistFile is one file of a gist. The API cuts content off at about 1 MB and
// marks such files as truncated; the full body is then only at RawURL.
type gistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

func (g *GistBackend) Load(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url(), nil)
	if err != nil {
		return nil, err
	}
	if g.githubToken != "" {
		req.Header.Set("Authorization", "token "+g.githubToken)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist load: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var gist struct {
		Files map[string]gistFile `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return nil, fmt.Errorf("decode gist: %w", err)
	}

	file, ok := gist.Files[name+".json"]
	if !ok {
		return nil, nil
	}
	if file.Truncated && file.RawURL != "" {
		return g.loadRaw(ctx, file.RawURL)
	}
	if file.Content == "" {
		return nil, nil
	}
	return []byte(file.Content), nil
}

func (g *GistBackend) loadRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if g.githubToken != "" {
		req.Header.Set("Authorization", "token "+g.githubToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist raw load: HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (g *GistBackend) Save(ctx context.Context, name string, data []byte) error {
	payload := map[string]map[string]gistFile{
		"files": {
			name + ".json": {Content: string(data)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, g.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+g.githubToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gist save: HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return nil
}
