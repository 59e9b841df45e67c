// httpclient/multipartrequest.go
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"

	"github.com/deploymenttheory/go-api-rx-client/response"
	"go.uber.org/zap"
)

// MultipartFile is one file part of a multipart/form-data request.
type MultipartFile struct {
	FileName    string
	ContentType string // defaults to application/octet-stream
	Content     io.Reader
}

// DoMultipartRequest builds a multipart/form-data body from fields and files and sends
// it through Call, so it shares the bearer and refresh-and-retry handling. The body is
// built once in memory and replayed verbatim on retry. Only POST and PUT are supported.
func (c *Client) DoMultipartRequest(ctx context.Context, method, endpoint string, fields map[string]string, files map[string]MultipartFile, out any) (*response.Result, error) {
	log := c.Logger

	if method != http.MethodPost && method != http.MethodPut {
		return nil, log.Error("HTTP method not supported for multipart request", zap.String("method", method))
	}

	body, contentType, err := buildMultipartBody(fields, files)
	if err != nil {
		return nil, log.Error("Failed to build multipart body", zap.String("endpoint", endpoint), zap.Error(err))
	}

	log.Debug("Executing multipart request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("size", len(body)),
	)

	result, err := c.Call(ctx, endpoint, RequestOptions{
		Method:  method,
		Body:    body,
		Headers: map[string]string{"Content-Type": contentType},
	})
	if err != nil {
		return nil, err
	}
	if result.Shape == response.ShapeRaw {
		result.Response.Body.Close()
		if out != nil {
			return result, response.ErrRawResponse
		}
		return result, nil
	}
	if out != nil {
		if err := result.Decode(out); err != nil {
			return result, err
		}
	}
	return result, nil
}

func buildMultipartBody(fields map[string]string, files map[string]MultipartFile) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, name := range sortedKeys(fields) {
		if err := writer.WriteField(name, fields[name]); err != nil {
			return nil, "", err
		}
	}

	for _, name := range sortedKeys(files) {
		file := files[name]
		if file.Content == nil {
			return nil, "", fmt.Errorf("file part %q has no content", name)
		}
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, file.FileName))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
