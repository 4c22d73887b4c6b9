/*
Package rubygems provides a client for using the rubygems.org public API.

Usage:
	todo:
*/
package rubygems

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// rubyGemsBaseURL - rubygems.org base API url (used as default client baseURL)
var rubyGemsBaseURL *url.URL

// rubyGemsHostname - rubygems.org API hostname (used as default API).
//
// rubygems.org is the main community gem hosting service. You can get more
// info on its official API here: guides.rubygems.org/rubygems-org-api
var rubyGemsHostname string = "https://rubygems.org"

func init() {
	rubyGemsBaseURL, _ = url.Parse(rubyGemsHostname)
}

// NewRubyGemsClient constructs a new RubyGemsClient
//
// If httpClient or URL is nil - default values will be used.
// Pass URL only if you are sure that the address is compatible with the rubygems.org public API.
func NewRubyGemsClient(httpClient *http.Client, URL *url.URL) *RubyGemsClient {
	if URL == nil {
		URL = rubyGemsBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RubyGemsClient{httpClient: httpClient, baseUrl: *URL}
}

// RubyGemsClient is used to communicate with rubygems.org compatible API service.
type RubyGemsClient struct {
	httpClient *http.Client
	baseUrl    url.URL
}

// Client represents the feed operations consumed by version resolution.
type Client interface {
	Versions(ctx context.Context, name string) ([]GemRelease, *http.Response, error)
}

// Versions method returns every published release of the specified gem,
// in the order the index serves them (newest first).
func (rc RubyGemsClient) Versions(ctx context.Context, name string) ([]GemRelease, *http.Response, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("gem name is required and can't be empty")
	}

	path := fmt.Sprintf("%s/api/v1/versions/%s.json", &rc.baseUrl, name)

	req, err := http.NewRequestWithContext(ctx, "GET", path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}
	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to send the request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, resp, fmt.Errorf("rubygems.org returned with !=200 status code")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("unable to read the response body: %w", err)
	}

	releases := []GemRelease{}
	if err = json.Unmarshal(body, &releases); err != nil {
		return nil, resp, fmt.Errorf("unable to parse the response body: %w", err)
	}

	return releases, resp, nil
}

// GemRelease represents one published gem version from the rubygems.org index.
type GemRelease struct {
	Authors         string    `json:"authors"`
	BuiltAt         time.Time `json:"built_at"`
	CreatedAt       time.Time `json:"created_at"`
	Description     string    `json:"description"`
	DownloadsCount  int       `json:"downloads_count"`
	Number          string    `json:"number"`
	Summary         string    `json:"summary"`
	Platform        string    `json:"platform"`
	RubygemsVersion string    `json:"rubygems_version"`
	RubyVersion     string    `json:"ruby_version"`
	Prerelease      bool      `json:"prerelease"`
	Licenses        []string  `json:"licenses"`
	Sha             string    `json:"sha"`
}
