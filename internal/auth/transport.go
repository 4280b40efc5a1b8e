package auth

import (
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

// retries transient failures of the identity provider. requests with a body are only
// retried when they can be replayed.
type retryTransport struct {
	base     http.RoundTripper
	attempts int
	backoff  func() backoff.BackOff
}

// returns the client used for token exchange and profile fetches
func NewProviderClient(base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: ProviderTimeout,
		Transport: &retryTransport{
			base:     base,
			attempts: ProviderAttempts,
			backoff: func() backoff.BackOff {
				return backoff.NewExponentialBackOff()
			},
		},
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	attempt := 0

	operation := func() error {
		attempt++

		r := req
		if attempt > 1 {
			if req.Body != nil && req.GetBody == nil {
				return backoff.Permanent(fmt.Errorf("cannot replay request body"))
			}

			r = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return backoff.Permanent(err)
				}

				r.Body = body
			}
		}

		res, err := t.base.RoundTrip(r)
		if err != nil {
			return err
		}

		if res.StatusCode >= http.StatusInternalServerError && attempt < t.attempts {
			res.Body.Close()
			return fmt.Errorf("identity provider returned %d", res.StatusCode)
		}

		resp = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(t.backoff(), uint64(t.attempts-1)),
		req.Context(),
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return resp, nil
}
