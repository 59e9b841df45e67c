// httpclient/downloadrequest.go
package httpclient

import (
	"context"
	"io"
	"net/http"

	"github.com/deploymenttheory/go-api-rx-client/response"
	"go.uber.org/zap"
)

// DoDownloadRequest fetches a binary payload such as a PDF and streams it into out.
// It goes through Call, so the bearer is attached and a 401 is refreshed and retried
// once. A JSON reply is written out as its unwrapped payload.
func (c *Client) DoDownloadRequest(ctx context.Context, endpoint string, out io.Writer) (int64, error) {
	log := c.Logger

	result, err := c.Call(ctx, endpoint, RequestOptions{
		Method:  http.MethodGet,
		Headers: map[string]string{"Accept": "*/*"},
	})
	if err != nil {
		return 0, err
	}

	if result.Shape != response.ShapeRaw {
		n, err := out.Write(result.Data)
		return int64(n), err
	}

	defer result.Response.Body.Close()
	written, err := io.Copy(out, result.Response.Body)
	if err != nil {
		return written, log.Error("Failed to write download", zap.String("endpoint", endpoint), zap.Error(err))
	}

	log.Debug("Download complete",
		zap.String("endpoint", endpoint),
		zap.String("content_type", result.Response.Header.Get("Content-Type")),
		zap.Int64("bytes", written),
	)
	return written, nil
}
