// Package update checks GitHub Releases for a newer published version.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultReleaseURL = "https://api.github.com/repos/matheuskafuri/stockwire/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

// Checker queries a GitHub latest-release endpoint.
type Checker struct {
	url    string
	client *http.Client
}

func NewChecker() *Checker {
	return &Checker{
		url:    defaultReleaseURL,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Check reports the latest published version when it differs from the one
// running. Any failure means nil; the check is advisory and never blocks the
// program.
func (c *Checker) Check(ctx context.Context, currentVersion string) *Result {
	tag, err := c.latestTag(ctx)
	if err != nil {
		return nil
	}

	latest := strings.TrimPrefix(tag, "v")
	current := strings.TrimPrefix(currentVersion, "v")
	if latest == "" || latest == current {
		return nil
	}
	return &Result{LatestVersion: latest}
}

func (c *Checker) latestTag(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release check: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	return release.TagName, nil
}

// Check runs a one-off check against the project's release feed.
func Check(ctx context.Context, currentVersion string) *Result {
	return NewChecker().Check(ctx, currentVersion)
}
