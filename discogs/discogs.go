package discogs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/ppartarr/mp3renamer/entity"
	"golang.org/x/oauth2"
)

const (
	Endpoint          = "https://api.discogs.com/database/search"
	RequestsPerMinute = 60
	UserAgent         = "mp3renamer/1.0 +https://github.com/ppartarr/mp3renamer"

	tokenType = "Discogs"
	timeout   = 30 * time.Second
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	errNoMatch = errors.New("no match")

	rateLimitHeaders = []string{
		"X-Discogs-Ratelimit",
		"X-Discogs-Ratelimit-Used",
		"X-Discogs-Ratelimit-Remaining",
	}
)

// Result is the best release matching a search
type Result struct {
	Title string // "Artist - Album"
	Year  string // entity.UnknownYear if missing
}

type Logger interface {
	Debugf(format string, a ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type Client struct {
	http      *http.Client
	endpoint  string
	userAgent string
	limiter   *Limiter
	logger    Logger
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(client *Client) {
		client.endpoint = endpoint
	}
}

func WithUserAgent(userAgent string) Option {
	return func(client *Client) {
		client.userAgent = userAgent
	}
}

func WithLimiter(limiter *Limiter) Option {
	return func(client *Client) {
		client.limiter = limiter
	}
}

func WithLogger(logger Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// New returns a release search client authenticating
// with the given personal access token
func New(token string, options ...Option) *Client {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: "token=" + token,
		TokenType:   tokenType,
	}))
	httpClient.Timeout = timeout

	client := &Client{
		http:      httpClient,
		endpoint:  Endpoint,
		userAgent: UserAgent,
		limiter:   NewLimiter(RequestsPerMinute, time.Minute),
		logger:    nopLogger{},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Search looks for the release matching artist and album:
// any failure, be it transport, status or payload related,
// is reported as a missing match
func (client *Client) Search(ctx context.Context, artist, album string) (Result, bool) {
	if err := client.limiter.Acquire(ctx); err != nil {
		client.logger.Debugf("lookup for %s - %s not issued: %s", artist, album, err)
		return Result{}, false
	}

	result, err := client.search(ctx, artist, album)
	if err != nil {
		client.logger.Debugf("lookup for %s - %s: %s", artist, album, err)
		return Result{}, false
	}
	return result, true
}

func (client *Client) search(ctx context.Context, artist, album string) (Result, error) {
	query := url.Values{}
	query.Set("q", artist+" "+album)
	query.Set("type", "release")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	request.Header.Set("User-Agent", client.userAgent)
	request.Header.Set("Accept", "application/json")

	response, err := client.http.Do(request)
	if err != nil {
		return Result{}, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		client.logRateLimit(response.Header)
		return Result{}, fmt.Errorf("HTTP %d: %s", response.StatusCode, response.Status)
	}

	var payload searchResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Results) == 0 || len(strings.TrimSpace(payload.Results[0].Title)) == 0 {
		client.logRateLimit(response.Header)
		return Result{}, errNoMatch
	}

	return Result{
		Title: payload.Results[0].Title,
		Year:  payload.Results[0].year(),
	}, nil
}

func (client *Client) logRateLimit(header http.Header) {
	for _, name := range rateLimitHeaders {
		client.logger.Debugf("%s: %s", name, header.Get(name))
	}
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title string `json:"title"`
	Year  any    `json:"year"` // either a string or a number
}

func (result searchResult) year() string {
	var year string
	switch value := result.Year.(type) {
	case string:
		year = strings.TrimSpace(value)
	case float64:
		year = strconv.FormatFloat(value, 'f', -1, 64)
	}
	if len(year) == 0 || year == "0" {
		return entity.UnknownYear
	}
	return year
}
