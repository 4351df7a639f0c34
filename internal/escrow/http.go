package escrow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"GaugeKeeper/internal/model"
)

// DefaultRequestTimeout bounds each voting-power read. Reads run under the ledger lock.
const DefaultRequestTimeout = 3 * time.Second

// HTTPOracle implements Oracle against a remote voting-power daemon.
type HTTPOracle struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPOracle creates a new oracle client with optional proxy support.
func NewHTTPOracle(baseURL, apiKey, proxyURL string) *HTTPOracle {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPOracle{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: DefaultRequestTimeout,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (o *HTTPOracle) Name() string { return "http" }

// votingPowerResponse is the expected JSON shape from the daemon.
type votingPowerResponse struct {
	VotingPower string `json:"voting_power"`
	Timestamp   uint64 `json:"timestamp"`
}

func (o *HTTPOracle) VotingPowerOf(addr model.Address, t uint64) (*uint256.Int, error) {
	q := url.Values{}
	q.Set("account", addr.String())
	q.Set("t", fmt.Sprint(t))
	vp, err := o.fetch("/api/v1/voting-power?" + q.Encode())
	if err != nil {
		return nil, errors.Wrapf(err, "fetch voting power of %s", addr)
	}
	return vp, nil
}

func (o *HTTPOracle) TotalVotingPower(t uint64) (*uint256.Int, error) {
	q := url.Values{}
	q.Set("t", fmt.Sprint(t))
	vp, err := o.fetch("/api/v1/voting-power/total?" + q.Encode())
	if err != nil {
		return nil, errors.Wrap(err, "fetch total voting power")
	}
	return vp, nil
}

func (o *HTTPOracle) fetch(path string) (*uint256.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	var result votingPowerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	vp, err := uint256.FromDecimal(result.VotingPower)
	if err != nil {
		return nil, errors.Wrapf(err, "parse voting power %q", result.VotingPower)
	}
	return vp, nil
}

// HTTPDelegation reads delegation-adjusted voting power from a remote boost
// delegation service. It plugs into BoostProxy.
type HTTPDelegation struct {
	client *HTTPOracle
}

// NewHTTPDelegation creates a delegation client with optional proxy support.
func NewHTTPDelegation(baseURL, apiKey, proxyURL string) *HTTPDelegation {
	return &HTTPDelegation{client: NewHTTPOracle(baseURL, apiKey, proxyURL)}
}

func (d *HTTPDelegation) AdjustedBalanceOf(addr model.Address, t uint64) (*uint256.Int, error) {
	q := url.Values{}
	q.Set("account", addr.String())
	q.Set("t", fmt.Sprint(t))
	vp, err := d.client.fetch("/api/v1/adjusted-balance?" + q.Encode())
	if err != nil {
		return nil, errors.Wrapf(err, "fetch adjusted balance of %s", addr)
	}
	return vp, nil
}
