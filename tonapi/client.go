package tonapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/ratelimit"
)

const (
	defaultBaseURL      = "https://tonapi.io"
	defaultToncenterURL = "https://toncenter.com"
)

// ResolutionError reports that a human-entered address could not be
// normalized to its canonical raw form.
type ResolutionError struct {
	Address string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve address %s: %v", e.Address, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports a failed upstream request. Status is set when the
// upstream answered with a non-200 code.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EventHeader is one entry of a wallet's jetton history page.
type EventHeader struct {
	EventID   string `json:"event_id"`
	Timestamp int64  `json:"timestamp"`
}

// Event is the full detail of one upstream event.
type Event struct {
	EventID   string   `json:"event_id"`
	Timestamp int64    `json:"timestamp"`
	Actions   []Action `json:"actions"`
}

// Action is one step of an event. Many action kinds exist; this system only
// reads the human-readable preview.
type Action struct {
	Type          string        `json:"type"`
	SimplePreview SimplePreview `json:"simple_preview"`
}

// SimplePreview is tonapi's human-readable rendering of an action.
type SimplePreview struct {
	Description string `json:"description"`
}

// Client talks to toncenter (address normalization) and tonapi (event list
// and event detail). The event-detail endpoint is rate-limited upstream to
// one call per second, enforced here with a blocking limiter.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	limiter      ratelimit.Limiter
	cache        ResolverCache
	baseURL      string
	toncenterURL string
}

// NewClient builds a client with the given bearer credential for tonapi.
// cache may be nil to disable resolution caching.
func NewClient(apiKey string, cache ResolverCache) *Client {
	return &Client{
		httpClient:   &http.Client{},
		apiKey:       apiKey,
		limiter:      ratelimit.New(1), // tonapi allows one detail request per second
		cache:        cache,
		baseURL:      defaultBaseURL,
		toncenterURL: defaultToncenterURL,
	}
}

type detectAddressResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		RawForm string `json:"raw_form"`
	} `json:"result"`
}

// ResolveAddress maps any accepted textual form of an address to its raw
// form. The raw form is the storage identity for wallets and the token.
func (c *Client) ResolveAddress(ctx context.Context, address string) (string, error) {
	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, address); ok {
			return raw, nil
		}
	}

	u := fmt.Sprintf("%s/api/v2/detectAddress?address=%s", c.toncenterURL, url.QueryEscape(address))
	var out detectAddressResponse
	if err := c.getJSON(ctx, u, false, &out); err != nil {
		return "", &ResolutionError{Address: address, Err: err}
	}
	if !out.OK || out.Result.RawForm == "" {
		return "", &ResolutionError{Address: address, Err: errors.New("address not recognized")}
	}

	if c.cache != nil {
		c.cache.Put(ctx, address, out.Result.RawForm)
	}
	return out.Result.RawForm, nil
}

// JettonHistory fetches one page of recent event headers for a wallet and
// jetton pair, newest first, both given in raw form.
func (c *Client) JettonHistory(ctx context.Context, rawAddress, jettonAddress string, limit int) ([]EventHeader, error) {
	u := fmt.Sprintf("%s/v2/accounts/%s/jettons/%s/history?limit=%d",
		c.baseURL, url.PathEscape(rawAddress), url.PathEscape(jettonAddress), limit)

	var out struct {
		Events []EventHeader `json:"events"`
	}
	if err := c.getJSON(ctx, u, true, &out); err != nil {
		return nil, asFetchError(u, err)
	}
	return out.Events, nil
}

// EventDetail fetches the full detail for one event id. Blocks until the
// rate limiter grants a slot.
func (c *Client) EventDetail(ctx context.Context, eventID string) (*Event, error) {
	c.limiter.Take()

	u := fmt.Sprintf("%s/v2/events/%s", c.baseURL, url.PathEscape(eventID))
	var out Event
	if err := c.getJSON(ctx, u, true, &out); err != nil {
		return nil, asFetchError(u, err)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, authorized bool, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func asFetchError(u string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{URL: u, Err: err}
}
