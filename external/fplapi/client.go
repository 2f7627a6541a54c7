package fplapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/platform/cache"
	"github.com/fplkit/planner/internal/platform/logging"
	"github.com/fplkit/planner/internal/platform/resilience"
	"github.com/fplkit/planner/internal/usecase"
)

const (
	defaultBaseURL  = "https://fantasy.premierleague.com/api"
	defaultTimeout  = 20 * time.Second
	defaultCacheTTL = 5 * time.Minute

	bootstrapCacheKey = "fplapi:bootstrap"
	fixturesCacheKey  = "fplapi:fixtures"
)

var errFPLTransient = crerr.New("fpl api transient failure")

// ClientConfig configures the upstream league API client.
type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	CacheTTL       time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches bootstrap, fixture, player-summary and entry-pick data from
// the league API and maps it to domain types. Responses for the two
// whole-league endpoints are TTL-cached; all calls share a circuit breaker
// and in-flight deduplication. It implements usecase.DataProvider.
type Client struct {
	http           *fasthttp.Client
	baseURL        string
	timeout        time.Duration
	maxRetries     int
	userAgent      string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	snapshots      *cache.Store
}

var _ usecase.DataProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "fplkit-planner/1.0"
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        baseURL,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		userAgent:      userAgent,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		snapshots:      cache.NewStore(ttl),
	}
}

// get fetches one API path into out, with retries on transient failures.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: fpl api circuit %s", usecase.ErrDependencyUnavailable, c.breaker.State())
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var lastErr error
	attempts := c.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			c.recordFailure()
			return err
		}
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				c.recordFailure()
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.fetch(url, out)
		if err == nil {
			if c.circuitEnabled {
				c.breaker.RecordSuccess()
			}
			return nil
		}
		lastErr = err
		if !crerr.Is(err, errFPLTransient) {
			break
		}
		c.logger.WarnContext(ctx, "fpl api request retrying",
			"url", url,
			"attempt", attempt+1,
			"error", err,
		)
	}

	c.recordFailure()
	return lastErr
}

func (c *Client) recordFailure() {
	if c.circuitEnabled {
		c.breaker.RecordFailure()
	}
}

func (c *Client) fetch(url string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.SetUserAgent(c.userAgent)

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		if stderrors.Is(err, fasthttp.ErrTimeout) {
			return crerr.Mark(crerr.Wrapf(err, "fetch %s timed out", url), errFPLTransient)
		}
		return crerr.Mark(crerr.Wrapf(err, "fetch %s", url), errFPLTransient)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusOK:
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return crerr.Mark(crerr.Newf("fetch %s: status %d", url, status), errFPLTransient)
	case status == fasthttp.StatusNotFound:
		return fmt.Errorf("%w: %s", usecase.ErrNotFound, url)
	default:
		return crerr.Newf("fetch %s: status %d", url, status)
	}

	// Copy the body into a pooled buffer so the response can be released
	// before decoding.
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.Write(resp.Body()); err != nil {
		return crerr.Wrapf(err, "buffer %s response", url)
	}

	if err := sonic.Unmarshal(buf.Bytes(), out); err != nil {
		return crerr.Wrapf(err, "decode %s response", url)
	}
	return nil
}

// Bootstrap pulls the whole-league snapshot, cached for the configured TTL.
func (c *Client) Bootstrap(ctx context.Context) (usecase.Snapshot, error) {
	v, err := c.snapshots.GetOrFill(ctx, bootstrapCacheKey, func() (any, error) {
		var payload bootstrapResponse
		if err := c.get(ctx, "bootstrap-static/", &payload); err != nil {
			return nil, err
		}
		return payload.toSnapshot(), nil
	})
	if err != nil {
		return usecase.Snapshot{}, err
	}
	snap, ok := v.(usecase.Snapshot)
	if !ok {
		return usecase.Snapshot{}, crerr.New("bootstrap cache holds unexpected type")
	}
	return snap, nil
}

// Fixtures pulls the full season fixture list, cached for the configured TTL.
func (c *Client) Fixtures(ctx context.Context) ([]fixture.Fixture, error) {
	v, err := c.snapshots.GetOrFill(ctx, fixturesCacheKey, func() (any, error) {
		var payload []fixtureDTO
		if err := c.get(ctx, "fixtures/", &payload); err != nil {
			return nil, err
		}
		out := make([]fixture.Fixture, 0, len(payload))
		for _, f := range payload {
			// Fixtures without an event are unscheduled and unusable for
			// lookahead.
			if f.Event == nil {
				continue
			}
			out = append(out, fixture.Fixture{
				Gameweek:       *f.Event,
				HomeTeamID:     f.TeamH,
				AwayTeamID:     f.TeamA,
				HomeDifficulty: f.TeamHDifficulty,
				AwayDifficulty: f.TeamADifficulty,
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	fixtures, ok := v.([]fixture.Fixture)
	if !ok {
		return nil, crerr.New("fixtures cache holds unexpected type")
	}
	return fixtures, nil
}

// PlayerDetail pulls the per-player summary: upcoming fixtures and the
// chronological appearance history. Not cached; callers batch behind worker
// pools and the single-flight group absorbs duplicates.
func (c *Client) PlayerDetail(ctx context.Context, playerID int) (usecase.PlayerDetail, error) {
	key := fmt.Sprintf("fplapi:element-summary:%d", playerID)
	v, err, _ := c.flight.Do(key, func() (any, error) {
		var payload elementSummaryResponse
		if err := c.get(ctx, fmt.Sprintf("element-summary/%d/", playerID), &payload); err != nil {
			return nil, err
		}
		return payload.toDetail(), nil
	})
	if err != nil {
		return usecase.PlayerDetail{}, err
	}
	detail, ok := v.(usecase.PlayerDetail)
	if !ok {
		return usecase.PlayerDetail{}, crerr.New("element summary result holds unexpected type")
	}
	return detail, nil
}

// EntryPicks pulls the squad an entry fielded for one gameweek.
func (c *Client) EntryPicks(ctx context.Context, entryID, gameweek int) (usecase.Picks, error) {
	var payload picksResponse
	if err := c.get(ctx, fmt.Sprintf("entry/%d/event/%d/picks/", entryID, gameweek), &payload); err != nil {
		return usecase.Picks{}, err
	}

	picks := usecase.Picks{PlayerIDs: make([]int, 0, len(payload.Picks))}
	for _, p := range payload.Picks {
		picks.PlayerIDs = append(picks.PlayerIDs, p.Element)
		if p.IsCaptain {
			picks.CaptainID = p.Element
		}
	}
	return picks, nil
}
