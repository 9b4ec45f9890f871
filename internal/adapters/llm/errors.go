package llm

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

func classify(op string, err error) *domain.RemoteError {
	return &domain.RemoteError{Op: op, Kind: failureKind(err), Err: err}
}

func failureKind(err error) domain.FailureKind {
	if errors.Is(err, domain.ErrMissingCredential) {
		return domain.FailureCredential
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiFailureKind(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiFailureKind(*apiErrPtr)
	}

	// Not an API response: network, DNS, TLS, context.
	return domain.FailureTransport
}

func apiFailureKind(e genai.APIError) domain.FailureKind {
	if code, ok := statusCode(e.Status); ok {
		switch code {
		case codes.Unauthenticated, codes.PermissionDenied:
			return domain.FailureCredential
		case codes.ResourceExhausted:
			return domain.FailureQuota
		case codes.Unavailable, codes.DeadlineExceeded:
			return domain.FailureTransport
		case codes.InvalidArgument:
			if mentionsAPIKey(e.Message) {
				return domain.FailureCredential
			}
			return domain.FailureRemote
		}
	}

	switch {
	case e.Code == http.StatusUnauthorized, e.Code == http.StatusForbidden:
		return domain.FailureCredential
	case e.Code == http.StatusTooManyRequests:
		return domain.FailureQuota
	case e.Code >= http.StatusInternalServerError:
		return domain.FailureTransport
	case e.Code == http.StatusBadRequest && mentionsAPIKey(e.Message):
		return domain.FailureCredential
	}
	return domain.FailureRemote
}

// statusCode parses a google.rpc status name such as "RESOURCE_EXHAUSTED".
func statusCode(status string) (codes.Code, bool) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return codes.OK, false
	}
	var c codes.Code
	if err := c.UnmarshalJSON([]byte(strconv.Quote(status))); err != nil {
		return codes.OK, false
	}
	return c, true
}

func mentionsAPIKey(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "api key")
}
