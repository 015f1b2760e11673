package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	vcerrors "github.com/bjtill/Vinyl-Record-Collection-Database/internal/errors"
)

// getJSON performs a single authenticated GET and decodes the body into
// target. Every failure is returned as a *errors.LookupError.
func (c *Client) getJSON(ctx context.Context, op, endpoint, token string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return vcerrors.NewLookupError(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return vcerrors.NewLookupError(op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Discogs token="+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return vcerrors.NewLookupError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return vcerrors.NewLookupStatusError(op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return vcerrors.NewLookupError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
