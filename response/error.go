// response/error.go
// This package provides utility functions and structures for handling and categorizing HTTP responses.
package response

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/deploymenttheory/go-api-rx-client/status"
	"github.com/goccy/go-json"
	"golang.org/x/net/html"
)

// DefaultErrorMessage is used when an error body is valid JSON but carries no message.
const DefaultErrorMessage = "API request failed"

// ErrSessionExpired is returned when a 401 could not be recovered by refreshing the
// credential pair. The token store has been cleared by the time it is returned.
var ErrSessionExpired = errors.New("session expired")

// APIError represents a non-2xx response from the API.
type APIError struct {
	HTTPStatus  int      `json:"httpStatus"`        // HTTP status code
	Method      string   `json:"method"`            // HTTP method used for the request
	URL         string   `json:"url"`               // The URL of the HTTP request
	Message     string   `json:"message"`           // Server message or status text
	Details     []string `json:"details,omitempty"` // Text extracted from XML/HTML/plain bodies
	Body        any      `json:"body,omitempty"`    // Parsed JSON error body, if any
	RawResponse string   `json:"raw_response"`      // Raw response body for debugging
}

// Error returns a string representation of the APIError, making it compatible with the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.HTTPStatus, e.Message)
}

// IsUnauthorized reports whether err is an APIError carrying a 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return 0
}

// HandleAPIErrorResponse builds an APIError from a failed response and closes its body.
// The message comes from the JSON body's "message" field when the body parses as JSON;
// otherwise it falls back to the status line text.
func HandleAPIErrorResponse(resp *http.Response, log logger.Logger) *APIError {
	apiError := &APIError{
		HTTPStatus: resp.StatusCode,
		Message:    status.TranslateStatusCode(resp),
	}
	if resp.Request != nil {
		apiError.Method = resp.Request.Method
		if resp.Request.URL != nil {
			apiError.URL = resp.Request.URL.String()
		}
	}

	if resp.Body == nil {
		return apiError
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		apiError.RawResponse = "Failed to read response body"
		logError(log, apiError, err)
		return apiError
	}
	apiError.RawResponse = string(bodyBytes)

	if !parseJSONResponse(bodyBytes, apiError) {
		mimeType, _ := parseHeader(resp.Header.Get("Content-Type"))
		switch mimeType {
		case "application/xml", "text/xml":
			apiError.Details = parseXMLResponse(bodyBytes)
		case "text/html":
			apiError.Details = parseHTMLResponse(bodyBytes)
		case "text/plain":
			apiError.Details = parseTextResponse(bodyBytes)
		}
	}

	logError(log, apiError, nil)
	return apiError
}

func logError(log logger.Logger, apiError *APIError, err error) {
	if log == nil {
		return
	}
	log.LogError("request_error", apiError.Method, apiError.URL, apiError.HTTPStatus, apiError.Message, err, apiError.RawResponse)
}

// parseJSONResponse reports whether the body was JSON. A JSON body without a usable
// "message" gets DefaultErrorMessage.
func parseJSONResponse(bodyBytes []byte, apiError *APIError) bool {
	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return false
	}
	var body any
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return false
	}
	apiError.Body = body
	apiError.Message = DefaultErrorMessage

	obj, ok := body.(map[string]any)
	if !ok {
		return true
	}
	switch msg := obj["message"].(type) {
	case string:
		if msg != "" {
			apiError.Message = msg
		}
	case []any:
		parts := make([]string, 0, len(msg))
		for _, m := range msg {
			parts = append(parts, fmt.Sprint(m))
		}
		if len(parts) > 0 {
			apiError.Message = strings.Join(parts, "; ")
			apiError.Details = parts
		}
	}
	return true
}

// parseXMLResponse collects every non-empty text node of an XML error body.
func parseXMLResponse(bodyBytes []byte) []string {
	doc, err := xmlquery.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return messages
}

// parseHTMLResponse concatenates the text of each <p> element of an HTML error page,
// including the targets of links found within them.
func parseHTMLResponse(bodyBytes []byte) []string {
	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil
	}

	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			var pContent strings.Builder
			var traverseChildren func(*html.Node)
			traverseChildren = func(c *html.Node) {
				if c.Type == html.TextNode {
					pContent.WriteString(strings.TrimSpace(c.Data) + " ")
				} else if c.Type == html.ElementNode && c.Data == "a" {
					for _, attr := range c.Attr {
						if attr.Key == "href" {
							pContent.WriteString("[Link: " + attr.Val + "] ")
							break
						}
					}
				}
				for child := c.FirstChild; child != nil; child = child.NextSibling {
					traverseChildren(child)
				}
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				traverseChildren(child)
			}
			if finalContent := strings.TrimSpace(pContent.String()); finalContent != "" {
				messages = append(messages, finalContent)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)
	return messages
}

func parseTextResponse(bodyBytes []byte) []string {
	if text := strings.TrimSpace(string(bodyBytes)); text != "" {
		return []string{text}
	}
	return nil
}
