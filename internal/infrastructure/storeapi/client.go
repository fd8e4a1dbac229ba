package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ReviewPipeline/internal/domain"
)

const defaultPageSize = 100

// Client talks to the storefront review API for one base URL.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

// NewClient wires an HTTP client; pageSize defaults to 100 and the
// request timeout to 10 seconds.
func NewClient(baseURL string, pageSize int, timeout time.Duration) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		http:     &http.Client{Timeout: timeout},
	}
}

type countResponse struct {
	QuerySummary struct {
		TotalReviews int `json:"total_reviews"`
	} `json:"query_summary"`
}

type pageResponse struct {
	Cursor  string `json:"cursor"`
	Reviews []struct {
		Review           string      `json:"review"`
		VotesUp          json.Number `json:"votes_up"`
		TimestampCreated int64       `json:"timestamp_created"`
		Author           struct {
			PlaytimeForever json.Number `json:"playtime_forever"`
		} `json:"author"`
	} `json:"reviews"`
}

// ReviewCount returns the total review count for a game. Any transport or
// decode failure reads as zero: an unreachable game is simply nothing to
// fetch, not an error.
func (c *Client) ReviewCount(ctx context.Context, appID int64) int {
	body, err := c.get(ctx, fmt.Sprintf("%s/appreviews/%d?json=1", c.baseURL, appID))
	if err != nil {
		return 0
	}

	var decoded countResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0
	}
	return decoded.QuerySummary.TotalReviews
}

// ReviewPage fetches one page of reviews at the given cursor and converts
// each entry to a RawReview. The storefront reports playtime in minutes;
// it is carried forward as whole hours.
func (c *Client) ReviewPage(ctx context.Context, appID int64, cursor string) ([]domain.RawReview, string, error) {
	pageURL := fmt.Sprintf("%s/appreviews/%d?json=1&num_per_page=%d&language=english&cursor=%s",
		c.baseURL, appID, c.pageSize, url.QueryEscape(cursor))

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}

	var decoded pageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, "", fmt.Errorf("decode review page: %w", err)
	}

	reviews := make([]domain.RawReview, 0, len(decoded.Reviews))
	for _, entry := range decoded.Reviews {
		reviews = append(reviews, domain.RawReview{
			AppID:          appID,
			Text:           entry.Review,
			UpvoteCount:    entry.VotesUp.String(),
			CreatedAt:      time.Unix(entry.TimestampCreated, 0).UTC().Format(domain.TimeLayout),
			PlaytimeRecent: minutesToHours(entry.Author.PlaytimeForever),
		})
	}
	return reviews, decoded.Cursor, nil
}

// minutesToHours converts a playtime reading to whole hours. Values that
// are not clean integers pass through untouched so the normalizer can
// reject them.
func minutesToHours(raw json.Number) string {
	minutes, err := raw.Int64()
	if err != nil {
		return raw.String()
	}
	return strconv.FormatInt(minutes/60, 10)
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ReviewPipeline/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request reviews: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
