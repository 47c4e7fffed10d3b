package inverter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	probing "github.com/prometheus-community/pro-bing"
)

// NewClient creates a client for the gateway at the given IP.
func NewClient(ipAddress string) *Client {
	return &Client{
		ipAddress: ipAddress,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

func (c *Client) IpAddress() string {
	return c.ipAddress
}

func (c *Client) StatusUrl() string {
	return fmt.Sprintf("http://%s%s", c.ipAddress, ApiEndpointPath)
}

// Fetch performs one bounded GET against the status endpoint and decodes
// the body as a flat JSON object. Any transport problem comes back wrapped
// in ErrConnectFailed, any bad payload in ErrInvalidResponse.
func (c *Client) Fetch(ctx context.Context) (types.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatusUrl(), nil)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	// Unmarshal into a map rejects arrays, strings and bare numbers,
	// which covers the "must be a JSON object" requirement.
	var reading types.Reading
	if err := json.Unmarshal(body, &reading); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	if reading == nil {
		// A literal null decodes without error but is not an object
		return nil, fmt.Errorf("%w: null body", ErrInvalidResponse)
	}

	return reading, nil
}

// Ping checks basic reachability before the first HTTP attempt.
func Ping(host string) (bool, time.Duration, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false, 0, err
	}

	pinger.Count = 1
	pinger.Timeout = pingTimeout
	pinger.SetPrivileged(false) // UDP-based, no root needed

	err = pinger.Run()
	if err != nil {
		return false, 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv > 0 {
		return true, stats.AvgRtt, nil
	}

	return false, 0, fmt.Errorf("no response")
}

// Validate does a one-shot reachability and payload check for a candidate
// gateway address: ping, then a single fetch. Used by the probe binary and
// before a device is registered with the monitor.
func (c *Client) Validate(ctx context.Context) (types.Reading, error) {
	if ok, _, err := Ping(c.ipAddress); !ok || err != nil {
		return nil, errors.Join(ErrNotReachable, err)
	}
	return c.Fetch(ctx)
}
