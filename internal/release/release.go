// Package release resolves which Cloud SQL Proxy build to download.
package release

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/netutil"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/platform"
)

const (
	// DefaultIndexURL is the GitHub API endpoint for the latest proxy release.
	DefaultIndexURL = "https://api.github.com/repos/GoogleCloudPlatform/cloudsql-proxy/releases/latest"

	// DefaultURLTemplate is the storage location of release binaries.
	// Placeholders: {version}, {os}, {arch}.
	DefaultURLTemplate = "https://storage.googleapis.com/cloud-sql-connectors/cloud-sql-proxy/{version}/cloud-sql-proxy.{os}.{arch}"
)

// Tag identifies a published proxy release, e.g. "v2.14.0".
type Tag string

// releaseResponse is the subset of the GitHub release JSON we read.
type releaseResponse struct {
	Name    string `json:"name"`
	TagName string `json:"tag_name"`
}

// Resolver looks up the latest release. It makes exactly one request per
// call and never retries.
type Resolver struct {
	client   *http.Client
	indexURL string
}

// NewResolver creates a Resolver. An empty indexURL selects DefaultIndexURL
// and a nil client gets a 30 second timeout.
func NewResolver(client *http.Client, indexURL string) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	return &Resolver{client: client, indexURL: indexURL}
}

// Latest returns the tag of the newest published release.
func (r *Resolver) Latest(ctx context.Context) (Tag, error) {
	logging.Debug("fetching latest release", "url", r.indexURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.indexURL, nil)
	if err != nil {
		return "", errors.NetworkError("Failed to fetch the latest Cloud SQL Proxy release", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", errors.NetworkError("Failed to fetch the latest Cloud SQL Proxy release", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NetworkError("Failed to fetch the latest Cloud SQL Proxy release",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, netutil.ErrorBody(resp.Body)))
	}

	var body releaseResponse
	if err := netutil.DecodeResponse(resp.Body, &body); err != nil {
		return "", errors.NetworkError("Failed to fetch the latest Cloud SQL Proxy release", err)
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = strings.TrimSpace(body.TagName)
	}
	if name == "" {
		return "", errors.NetworkError("Failed to fetch the latest Cloud SQL Proxy release",
			fmt.Errorf("release index returned no name or tag_name"))
	}

	logging.Debug("resolved latest release", "tag", name)
	return Tag(name), nil
}

// DownloadURL expands template for the given tag and platform. An empty
// template selects DefaultURLTemplate.
func DownloadURL(template string, tag Tag, p platform.Descriptor) string {
	if template == "" {
		template = DefaultURLTemplate
	}
	return strings.NewReplacer(
		"{version}", string(tag),
		"{os}", p.OS,
		"{arch}", p.Arch,
	).Replace(template)
}
