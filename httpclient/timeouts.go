// httpclient/timeouts.go
package httpclient

import (
	"net/http"
	"time"
)

// ModifyHttpTimeout modifies the HTTP timeout time. Requests already in flight keep
// the timeout they started with.
func (c *Client) ModifyHttpTimeout(newTimeout time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	updated := *c.http
	updated.Timeout = newTimeout
	c.http = &updated
}

// HttpTimeout returns the current HTTP timeout.
func (c *Client) HttpTimeout() time.Duration {
	return c.httpClient().Timeout
}

func (c *Client) httpClient() *http.Client {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.http
}
