package spec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"golang.org/x/net/html/charset"
)

const maxSpecBytes = 4 << 20

// HTTPSource fetches <BaseURL>/<name>.agiml. Bodies are converted to UTF-8
// according to the charset of the response.
type HTTPSource struct {
	BaseURL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

func (h *HTTPSource) Load(ctx context.Context, name string) (string, error) {
	u, err := url.JoinPath(h.BaseURL, name+Extension)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build url: %v", ErrMissingSpecification, err)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("fetching spec from: '%v'\n", u))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrMissingSpecification, err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to fetch '%v': %v", ErrMissingSpecification, u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status fetching '%v': %v", ErrMissingSpecification, u, resp.Status)
	}

	var r io.Reader = io.LimitReader(resp.Body, maxSpecBytes)
	ur, err := charset.NewReader(r, resp.Header.Get("Content-Type"))
	if err != nil {
		ancli.Warnf("failed to find charset reader for '%v', reading raw: %v\n", u, err)
		ur = r
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, ur); err != nil {
		return "", fmt.Errorf("%w: failed to read '%v': %v", ErrMissingSpecification, u, err)
	}
	return nonEmpty(sb.String(), u)
}
