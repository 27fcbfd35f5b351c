package http_request

import (
	"net/http"
	"time"
)

// NewClient returns the client shared by every http_request step of a host.
func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
