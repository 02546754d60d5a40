package transport

import (
	"io"
	"net/http"

	"github.com/agentstation/catalogmirror/pkg/constants"
	"github.com/agentstation/catalogmirror/pkg/errors"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// ReadBody drains and closes the response, returning an APIError for any
// status other than 200.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.String()
		}
		return nil, errors.NewAPIError(endpoint, resp.StatusCode, truncate(string(body), 256))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
