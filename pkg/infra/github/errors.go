package github

import (
	"errors"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// statusOf returns the HTTP status carried by a go-github error, or 0 for
// transport failures.
func statusOf(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode
	}
	return 0
}

func isRateLimited(err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	return errors.As(err, &rateErr) || errors.As(err, &abuseErr)
}

func isAuthFailure(err error) bool {
	return isRateLimited(err) || statusOf(err) == http.StatusUnauthorized
}

// classify wraps a go-github error and tags authentication failures.
func classify(err error, msg string, opts ...goerr.Option) error {
	switch {
	case isRateLimited(err):
		opts = append(opts, goerr.T(model.ErrTagRateLimit))
	case statusOf(err) == http.StatusUnauthorized:
		opts = append(opts, goerr.T(model.ErrTagInvalidToken))
	}
	if status := statusOf(err); status != 0 {
		opts = append(opts, goerr.V("status", status))
	}
	return goerr.Wrap(err, msg, opts...)
}
