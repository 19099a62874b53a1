// Package remote lists RefSeq release files over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/logger"
)

// DefaultBaseURL is the NCBI RefSeq release directory.
const DefaultBaseURL = "https://ftp.ncbi.nlm.nih.gov/refseq/release"

// Databases are the RefSeq divisions that can be downloaded.
var Databases = []string{
	"archaea",
	"bacteria",
	"fungi",
	"invertebrate",
	"mitochondrion",
	"plant",
	"plasmid",
	"protozoa",
	"plastid",
	"viral",
	"vertebrate_mammalian",
	"vertebrate_other",
}

// IsDatabase reports whether name is a known RefSeq division.
func IsDatabase(name string) bool {
	for _, db := range Databases {
		if db == name {
			return true
		}
	}
	return false
}

var genomicFilePattern = regexp.MustCompile(`>([^<>]+genomic\.fna\.gz)<`)

// maxBody caps how much of a listing page is read.
const maxBody = 64 << 20

// Client fetches release metadata and directory listings.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a Client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ReleaseNumber returns the current release number, e.g. "224".
func (c *Client) ReleaseNumber(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.BaseURL+"/RELEASE_NUMBER")
	if err != nil {
		return "", err
	}
	release := strings.TrimSpace(body)
	if release == "" {
		return "", core.ErrRemoteListing.WithMessage("empty release number")
	}
	return release, nil
}

// ListGenomicFiles returns the genomic FASTA files of a division in the
// order the index page lists them.
func (c *Client) ListGenomicFiles(ctx context.Context, database string) ([]string, error) {
	if !IsDatabase(database) {
		return nil, core.ErrUnknownDatabase.WithDetails(map[string]interface{}{"database": database})
	}

	body, err := c.get(ctx, c.BaseURL+"/"+database+"/")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, m := range genomicFilePattern.FindAllStringSubmatch(body, -1) {
		files = append(files, m[1])
	}
	logger.Info("listed %d genomic files for %s", len(files), database)
	return files, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", core.ErrRemoteListing.WithDetails(map[string]interface{}{"path": url}).WithCause(err)
	}

	logger.Debug("GET %s", url)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", core.ErrRemoteListing.WithDetails(map[string]interface{}{"path": url}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", core.ErrRemoteListing.WithDetails(map[string]interface{}{"path": url}).
			WithCause(fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", core.ErrRemoteListing.WithDetails(map[string]interface{}{"path": url}).WithCause(err)
	}
	return string(data), nil
}
