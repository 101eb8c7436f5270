package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// transient reports whether a request failure is worth retrying: network
// errors and throttling/5xx responses are, everything else is not.
func transient(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// doWithRetry issues the request with exponential backoff on transient
// failures, respecting context cancellation.
func doWithRetry(ctx context.Context, client *http.Client, makeReq func() (*http.Request, error)) (*http.Response, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	return backoff.RetryWithData(func() (*http.Response, error) {
		req, err := makeReq()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("make request: %w", err))
		}

		resp, err := client.Do(req)
		if err != nil {
			if transient(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		if resp.StatusCode >= 400 {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			herr := &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
			if transient(herr) {
				return nil, herr
			}
			return nil, backoff.Permanent(error(herr))
		}

		return resp, nil
	}, policy)
}
