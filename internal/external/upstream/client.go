package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/hotrank/internal/contracts"
	"github.com/wonny/hotrank/pkg/config"
	"github.com/wonny/hotrank/pkg/httputil"
	"github.com/wonny/hotrank/pkg/logger"
)

// maxBodySize bounds how much of an upstream response is read
const maxBodySize = 16 << 20

// Client fetches signed ranking payloads from the upstream provider
// ⭐ SSOT: 랭킹 데이터 제공자 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	baseURL   string
	signPath  string
	dataPath  string
	apiFlag   string
	filename  string
	userAgent string

	now   func() time.Time
	token func() string
}

// SignParams is the body of a signing request and the base of the data query
type SignParams struct {
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
	APIFlag   string `json:"apiFlag"`
	Filename  string `json:"filename,omitempty"`
}

type signResponse struct {
	Status  string `json:"status"`
	Sign    string `json:"sign"`
	Message string `json:"message"`
}

type dataResponse struct {
	Status  string   `json:"status"`
	Data    []RawRow `json:"data"`
	Message string   `json:"message"`
}

// NewClient creates a new upstream client.
// Retry is disabled on httpClient: a resent request would reuse the signed nonce.
func NewClient(httpClient *httputil.Client, cfg config.UpstreamConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.DisableRetry(),
		logger:     log.Module("upstream"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		signPath:   cfg.SignPath,
		dataPath:   cfg.DataPath,
		apiFlag:    cfg.APIFlag,
		filename:   cfg.Filename,
		userAgent:  cfg.UserAgent,
		now:        time.Now,
		token:      randomToken,
	}
}

// WithClock overrides the timestamp source
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// WithTokenSource overrides the random part of the nonce
func (c *Client) WithTokenSource(token func() string) *Client {
	c.token = token
	return c
}

// randomToken returns 12 random hex characters
func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewSignParams builds fresh request parameters.
// nonce = apiFlag + random token + last 4 digits of the millisecond timestamp
func (c *Client) NewSignParams() SignParams {
	ts := c.now().UnixMilli()
	tsStr := strconv.FormatInt(ts, 10)
	if len(tsStr) > 4 {
		tsStr = tsStr[len(tsStr)-4:]
	}

	return SignParams{
		Timestamp: ts,
		Nonce:     c.apiFlag + c.token() + tsStr,
		APIFlag:   c.apiFlag,
		Filename:  c.filename,
	}
}

// Sign obtains a signature for params from the signing endpoint
func (c *Client) Sign(ctx context.Context, params SignParams) (string, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("%w: marshal params: %v", contracts.ErrSigning, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.signPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", contracts.ErrSigning, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	var result signResponse
	if err := c.doJSON(req, &result); err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrSigning, err)
	}

	if result.Status != "success" || result.Sign == "" {
		return "", fmt.Errorf("%w: status=%q message=%q", contracts.ErrSigning, result.Status, result.Message)
	}

	return result.Sign, nil
}

// FetchRankings signs a fresh request and downloads the raw ranking rows
func (c *Client) FetchRankings(ctx context.Context) ([]RawRow, error) {
	params := c.NewSignParams()

	sign, err := c.Sign(ctx, params)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("timestamp", strconv.FormatInt(params.Timestamp, 10))
	query.Set("nonce", params.Nonce)
	query.Set("apiFlag", params.APIFlag)
	if params.Filename != "" {
		query.Set("filename", params.Filename)
	}
	query.Set("sign", sign)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.dataPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", contracts.ErrFetch, err)
	}
	c.setHeaders(req)

	var result dataResponse
	if err := c.doJSON(req, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrFetch, err)
	}

	if result.Status != "success" || result.Data == nil {
		return nil, fmt.Errorf("%w: status=%q message=%q", contracts.ErrFetch, result.Status, result.Message)
	}

	c.logger.WithField("rows", len(result.Data)).Debug("Fetched ranking payload")
	return result.Data, nil
}

// Scrape fetches and parses the current rankings
func (c *Client) Scrape(ctx context.Context) ([]contracts.ParsedRanking, error) {
	rows, err := c.FetchRankings(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(rows), nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")
}

// doJSON executes req and decodes a 2xx JSON body into dest
func (c *Client) doJSON(req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	isHTML := looksLikeHTML(resp.Header.Get("Content-Type"), body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isHTML {
			return fmt.Errorf("unexpected status code: %d (%s)", resp.StatusCode, summarizeHTML(body))
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if isHTML {
		return fmt.Errorf("expected JSON, got HTML page: %s", summarizeHTML(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}
	return nil
}
