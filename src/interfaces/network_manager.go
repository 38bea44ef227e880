package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with potential proxy/retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// The request is bounded by ctx. Returns the response body or an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
