package lichess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://lichess.org"

var ErrBadStatus = errors.New("unexpected http status")

// Client downloads game exports from the Lichess API.
type Client struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// GameQuery selects the games of one user.
type GameQuery struct {
	Username string
	Max      int
	Rated    bool
	PerfType string
}

// Game is one record of the ndjson game export.
type Game struct {
	ID         string `json:"id"`
	Variant    string `json:"variant"`
	Status     string `json:"status"`
	Winner     string `json:"winner"`
	Moves      string `json:"moves"`
	InitialFen string `json:"initialFen"`
}

func (c *Client) gamesURL(q GameQuery) string {
	var params = url.Values{}
	if q.Max > 0 {
		params.Set("max", strconv.Itoa(q.Max))
	}
	if q.Rated {
		params.Set("rated", "true")
	}
	if q.PerfType != "" {
		params.Set("perfType", q.PerfType)
	}
	params.Set("moves", "true")
	return fmt.Sprintf("%v/api/games/user/%v?%v",
		c.BaseURL, url.PathEscape(q.Username), params.Encode())
}

// StreamGames calls onGame for every exported game and returns how many were delivered.
// The count is meaningful also when an error is returned.
func (c *Client) StreamGames(
	ctx context.Context,
	q GameQuery,
	onGame func(Game) error,
) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gamesURL(q), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/x-ndjson")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w %v for user %v", ErrBadStatus, resp.Status, q.Username)
	}

	var count int
	var decoder = json.NewDecoder(resp.Body)
	for {
		var game Game
		err := decoder.Decode(&game)
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("decode game %v: %w", count+1, err)
		}
		if err := onGame(game); err != nil {
			return count, err
		}
		count++
	}
}
