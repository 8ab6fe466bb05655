package lolpros

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
)

// Client resolves riot ids to lolpros.gg profile slugs. Lookups are
// best-effort; callers treat every failure as skippable.
type Client struct {
	client *fasthttp.Client
}

func NewClient() *Client {
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type searchResult struct {
	Slug string `json:"slug"`
}

// GetSlug returns the profile slug for a riot id, or "" when no profile
// exists. Multiple search hits resolve to the first one.
func (c *Client) GetSlug(ctx context.Context, gameName, tagLine string) (string, error) {
	query := url.QueryEscape(fmt.Sprintf("%s#%s", gameName, tagLine))
	reqURL := fmt.Sprintf("https://api.lolpros.gg/es/search?query=%s", query)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return "", err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return "", err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var results []searchResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return "", err
	}

	if len(results) == 0 {
		return "", nil
	}
	return results[0].Slug, nil
}
