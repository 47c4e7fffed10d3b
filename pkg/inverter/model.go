package inverter

import (
	"fmt"
	"net/http"
	"time"
)

var (
	ErrConnectFailed   = fmt.Errorf("inverter gateway unreachable")
	ErrInvalidResponse = fmt.Errorf("inverter gateway returned an invalid response")
	ErrNotReachable    = fmt.Errorf("inverter gateway did not answer ping")
)

const (
	// The gateway serves its full metric set as one flat JSON object here.
	ApiEndpointPath = "/status"

	fetchTimeout = 15 * time.Second
	pingTimeout  = 2 * time.Second
)

// Client fetches status snapshots from a single inverter gateway.
type Client struct {
	ipAddress  string
	httpClient *http.Client
}
