package recommendations

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/shelfrec/pkg/models"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const maxPayloadBytes = 4 << 20

// ClientOptions configures the HTTP provider client.
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the number of requests per second; 0 disables limiting.
	RateLimit float64
	// BreakerFailures is the number of consecutive failures that opens the
	// circuit; 0 disables the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
}

// Client fetches recommendations over HTTP from
// {BaseURL}/recommend/{userID}?top_n={topN}.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]models.Item]
}

func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid recommender base url")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("recommender base url must be http or https, got %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{baseURL: base, http: httpClient}
	log := logger.New()

	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	if opts.BreakerFailures > 0 {
		failures := opts.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker[[]models.Item](gobreaker.Settings{
			Name:    "recommender",
			Timeout: opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				var se *StatusError
				if errors.As(err, &se) {
					return se.clientError()
				}
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				breakerState.WithLabelValues(name).Set(float64(to))
				log.Info("circuit breaker state change", logger.Data{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		})
	}

	return c, nil
}

func (c *Client) Recommend(ctx context.Context, userID, topN int) ([]models.Item, error) {
	if c.breaker == nil {
		return c.fetch(ctx, userID, topN)
	}
	items, err := c.breaker.Execute(func() ([]models.Item, error) {
		return c.fetch(ctx, userID, topN)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(err, "recommendation service temporarily unavailable")
	}
	return items, err
}

func (c *Client) fetch(ctx context.Context, userID, topN int) ([]models.Item, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	u := c.baseURL.JoinPath("recommend", strconv.Itoa(userID))
	q := u.Query()
	q.Set("top_n", strconv.Itoa(topN))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return decodeRecommendations(body)
}

// envelope is the provider's response body. Recommendations is a pointer so a
// missing key can be told apart from an empty list.
type envelope struct {
	Recommendations *[]wireItem `json:"recommendations"`
}

type wireItem struct {
	ISBN            string   `json:"ISBN"`
	Title           string   `json:"Book-Title"`
	Author          string   `json:"Book-Author"`
	Year            rawYear  `json:"Year-Of-Publication"`
	Publisher       string   `json:"Publisher"`
	ImageURLSmall   string   `json:"Image-URL-S"`
	ImageURLMedium  string   `json:"Image-URL-M"`
	ImageURLLarge   string   `json:"Image-URL-L"`
	PredictedRating *float64 `json:"predicted_rating"`
}

// rawYear accepts the year as a JSON string, number or null and keeps its text.
type rawYear string

func (y *rawYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*y = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithStack(err)
		}
		*y = rawYear(s)
	default:
		*y = rawYear(data)
	}
	return nil
}

func decodeRecommendations(body []byte) ([]models.Item, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	if env.Recommendations == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "missing recommendations")
	}

	items := make([]models.Item, 0, len(*env.Recommendations))
	for _, w := range *env.Recommendations {
		item := models.Item{
			ID:              w.ISBN,
			Title:           w.Title,
			Author:          w.Author,
			Publisher:       w.Publisher,
			PublicationYear: string(w.Year),
			ImageURLSmall:   w.ImageURLSmall,
			ImageURLMedium:  w.ImageURLMedium,
			ImageURLLarge:   w.ImageURLLarge,
		}
		if w.PredictedRating != nil {
			item = item.WithScore(max(*w.PredictedRating, 0))
		}
		items = append(items, item)
	}
	return items, nil
}
