package discogs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SearchByBarcode searches releases matching a barcode.
func (c *Client) SearchByBarcode(ctx context.Context, barcode, token string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("barcode", barcode)
	params.Set("type", "release")
	return c.search(ctx, "search barcode", params, token)
}

// SearchByText searches releases matching a free-text query (artist, title, ...).
func (c *Client) SearchByText(ctx context.Context, query, token string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "release")
	return c.search(ctx, "search text", params, token)
}

func (c *Client) search(ctx context.Context, op string, params url.Values, token string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s/database/search?%s", c.baseURL, params.Encode())

	var response struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.getJSON(ctx, op, endpoint, token, &response); err != nil {
		return nil, err
	}

	return response.Results, nil
}

// GetRelease fetches the full release document by Discogs release id.
func (c *Client) GetRelease(ctx context.Context, releaseID int, token string) (*Release, error) {
	endpoint := fmt.Sprintf("%s/releases/%s", c.baseURL, url.PathEscape(strconv.Itoa(releaseID)))

	var release Release
	if err := c.getJSON(ctx, "get release", endpoint, token, &release); err != nil {
		return nil, err
	}
	return &release, nil
}
