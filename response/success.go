// response/success.go
package response

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// HandleAPISuccessResponse turns a 2xx response into a Result.
//
// JSON bodies are read, decoded, unwrapped and the body is closed. A 204 is ShapeEmpty.
// Anything else is returned as ShapeRaw with the body untouched so binary payloads such
// as PDFs can be streamed by the caller.
func HandleAPISuccessResponse(resp *http.Response, unwrapper Unwrapper, log logger.Logger) (*Result, error) {
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return &Result{Shape: ShapeEmpty, Response: resp}, nil
	}

	if !IsJSONContentType(resp.Header.Get("Content-Type")) {
		if log != nil {
			log.Debug("Returning raw response",
				zap.String("content_type", resp.Header.Get("Content-Type")),
				zap.Int("status_code", resp.StatusCode),
			)
		}
		return &Result{Shape: ShapeRaw, Response: resp}, nil
	}

	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return &Result{Shape: ShapeEmpty, Response: resp}, nil
	}

	var value any
	decoder := json.NewDecoder(bytes.NewReader(bodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		if log != nil {
			log.Error("Failed to decode JSON response",
				zap.Int("status_code", resp.StatusCode),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("decoding JSON response: %w", err)
	}

	if unwrapper == nil {
		unwrapper = DefaultUnwrapper
	}
	value = unwrapper.Unwrap(value)

	result := &Result{Shape: classify(value), Value: value, Response: resp}
	if result.Shape != ShapeEmpty {
		if result.Data, err = json.Marshal(value); err != nil {
			return nil, fmt.Errorf("re-encoding unwrapped payload: %w", err)
		}
	}
	return result, nil
}
