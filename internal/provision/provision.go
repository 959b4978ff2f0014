// Package provision downloads the Cloud SQL Proxy binary and makes it
// executable.
package provision

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/errors"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/logging"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/netutil"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/platform"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/release"
	"github.com/firefly-engineering/setup-cloudsql-proxy/internal/system"
)

const (
	// ExecutableName is the file name the binary is saved under.
	ExecutableName = "cloud_sql_proxy"

	// ExecutableMode is rwxr-xr-x.
	ExecutableMode = 0o755

	// DownloadTimeout bounds the default client, body included.
	DownloadTimeout = 5 * time.Minute
)

// LatestResolver resolves the release to download.
type LatestResolver interface {
	Latest(ctx context.Context) (release.Tag, error)
}

// Binary describes a provisioned proxy executable.
type Binary struct {
	Path     string
	Tag      release.Tag
	URL      string
	Platform platform.Descriptor
	Size     int64
	Digest   string // hex BLAKE3 of the downloaded bytes
}

// Options configures a Provisioner.
type Options struct {
	// Resolver picks the release. Required.
	Resolver LatestResolver

	// Client fetches the binary. Defaults to http.DefaultClient.
	Client *http.Client

	// FS is the filesystem to write into. Defaults to system.DefaultFS().
	FS system.FileSystem

	// URLTemplate overrides release.DefaultURLTemplate.
	URLTemplate string

	// Platform overrides host detection.
	Platform *platform.Descriptor
}

// Provisioner downloads the proxy binary into a directory.
type Provisioner struct {
	resolver    LatestResolver
	client      *http.Client
	fs          system.FileSystem
	urlTemplate string
	platform    platform.Descriptor
}

// New creates a Provisioner from opts.
func New(opts Options) *Provisioner {
	p := &Provisioner{
		resolver:    opts.Resolver,
		client:      opts.Client,
		fs:          opts.FS,
		urlTemplate: opts.URLTemplate,
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: DownloadTimeout}
	}
	if p.fs == nil {
		p.fs = system.DefaultFS()
	}
	if opts.Platform != nil {
		p.platform = *opts.Platform
	} else {
		p.platform = platform.Detect()
	}
	return p
}

// Provision resolves the latest release, downloads it to
// dir/cloud_sql_proxy and marks it executable.
//
// A partial file is left behind on failure.
func (p *Provisioner) Provision(ctx context.Context, dir string) (*Binary, error) {
	tag, err := p.resolver.Latest(ctx)
	if err != nil {
		return nil, err
	}

	url := release.DownloadURL(p.urlTemplate, tag, p.platform)
	path := filepath.Join(dir, ExecutableName)
	logging.Info("provisioning Cloud SQL Proxy", "path", path, "tag", tag, "platform", p.platform)

	if err := p.ensureDir(dir); err != nil {
		return nil, err
	}

	logging.UserInfo("Downloading Cloud SQL Proxy from %s to %s", url, dir)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NetworkError("Failed to download Cloud SQL Proxy", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NetworkError("Failed to download Cloud SQL Proxy", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NetworkError("Failed to download Cloud SQL Proxy",
			fmt.Errorf("GET %s: HTTP %d: %s", url, resp.StatusCode, netutil.ErrorBody(resp.Body)))
	}

	size, digest, err := p.write(path, resp.Body)
	if err != nil {
		return nil, err
	}

	if err := p.fs.Chmod(path, ExecutableMode); err != nil {
		return nil, errors.DownloadError("Failed to download Cloud SQL Proxy",
			fmt.Errorf("chmod %s: %w", path, err))
	}

	logging.Info("downloaded Cloud SQL Proxy",
		"path", path, "size", humanize.Bytes(uint64(size)), "blake3", digest)
	logging.UserSuccess("Successfully downloaded and set execution permissions on Cloud SQL Proxy")

	return &Binary{
		Path:     path,
		Tag:      tag,
		URL:      url,
		Platform: p.platform,
		Size:     size,
		Digest:   digest,
	}, nil
}

// ensureDir creates dir when it is not readable and writable. Any access
// failure is treated as "does not exist".
func (p *Provisioner) ensureDir(dir string) error {
	logging.Debug("verifying access", "dir", dir)
	err := p.fs.Access(dir)
	if err == nil {
		return nil
	}
	logging.Debug("directory not accessible, creating", "dir", dir, "error", err)

	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.DownloadError("Failed to download Cloud SQL Proxy",
			fmt.Errorf("create %s: %w", dir, err))
	}
	return nil
}

// write streams body into path, hashing as it goes.
func (p *Provisioner) write(path string, body io.Reader) (int64, string, error) {
	file, err := p.fs.Create(path, 0o644)
	if err != nil {
		return 0, "", errors.DownloadError("Failed to download Cloud SQL Proxy",
			fmt.Errorf("create %s: %w", path, err))
	}

	hasher := blake3.New()
	size, copyErr := io.Copy(io.MultiWriter(file, hasher), body)
	closeErr := file.Close()
	if copyErr != nil {
		return 0, "", errors.DownloadError("Failed to download Cloud SQL Proxy",
			fmt.Errorf("write %s: %w", path, copyErr))
	}
	if closeErr != nil {
		return 0, "", errors.DownloadError("Failed to download Cloud SQL Proxy",
			fmt.Errorf("close %s: %w", path, closeErr))
	}

	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}
