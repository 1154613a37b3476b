// Package chrome handles acquiring the Google Chrome package and detecting
// the version of the installed binary.
package chrome

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/selenv/selenv/lib/runner"
)

// DebFileName is the file name the downloaded browser package is saved under.
const DebFileName = "google-chrome-stable_current_amd64.deb"

// Downloader fetches a browser package artifact to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// HTTPDownloader is the Downloader implementation backed by net/http,
// writing the artifact through an afero filesystem.
type HTTPDownloader struct {
	FS     afero.Fs
	Client *http.Client
	Logger logrus.FieldLogger
}

// NewHTTPDownloader returns an HTTPDownloader using the default HTTP client.
func NewHTTPDownloader(fs afero.Fs, logger logrus.FieldLogger) *HTTPDownloader {
	return &HTTPDownloader{FS: fs, Client: http.DefaultClient, Logger: logger}
}

// Download implements Downloader.
func (d *HTTPDownloader) Download(ctx context.Context, url, dest string) error {
	d.Logger.WithFields(logrus.Fields{"url": url, "dest": dest}).Info("Downloading Chrome package...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("could not build download request: %w", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("could not download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("could not download %s: unexpected status %s", url, resp.Status)
	}

	file, err := d.FS.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", dest, err)
	}

	written, err := io.Copy(file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("could not save %s: %w", dest, err)
	}

	d.Logger.WithField("bytes", written).Debug("download finished")
	return nil
}

// Version holds the detected browser version.
type Version struct {
	Full  string // e.g. "126.0.6478.126"
	Major string // e.g. "126"
}

// DetectVersion runs the installed browser binary with --version and parses
// the result.
func DetectVersion(ctx context.Context, r runner.Runner, binary string) (Version, error) {
	out, err := r.Output(ctx, binary, "--version")
	if err != nil {
		return Version{}, fmt.Errorf("could not detect the browser version: %w", err)
	}
	return ParseVersion(out), nil
}

// ParseVersion extracts the version from `google-chrome --version` output,
// e.g. "Google Chrome 126.0.6478.126". The full version is the third
// whitespace-delimited token and the major version is its first dot-delimited
// segment. The output shape is not validated; garbled output propagates as a
// garbled (or empty) version.
func ParseVersion(out string) Version {
	fields := strings.Fields(out)
	var full string
	if len(fields) >= 3 {
		full = fields[2]
	}
	major, _, _ := strings.Cut(full, ".")
	return Version{Full: full, Major: major}
}

var _ Downloader = &HTTPDownloader{}
