package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/PabloGalante/gemini-suite/internal/domain"
)

func TestFailureKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"missing key", domain.ErrMissingCredential, domain.FailureCredential},
		{"unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, domain.FailureCredential},
		{"permission denied", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, domain.FailureCredential},
		{"bad api key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, domain.FailureCredential},
		{"bad request", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "unsupported mime type"}, domain.FailureRemote},
		{"quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, domain.FailureQuota},
		{"quota by http code", genai.APIError{Code: 429, Status: "429 Too Many Requests"}, domain.FailureQuota},
		{"unavailable", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, domain.FailureTransport},
		{"server error without status", genai.APIError{Code: 500}, domain.FailureTransport},
		{"not found", genai.APIError{Code: 404, Status: "NOT_FOUND"}, domain.FailureRemote},
		{"wrapped pointer", fmt.Errorf("call: %w", &genai.APIError{Code: 403}), domain.FailureCredential},
		{"network", errors.New("dial tcp: connection refused"), domain.FailureTransport},
		{"deadline", context.DeadlineExceeded, domain.FailureTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, failureKind(tc.err))
		})
	}
}

func TestClassifyKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	rerr := classify(OpSearch, cause)

	assert.ErrorIs(t, rerr, cause)
	assert.Equal(t, OpSearch, rerr.Op)
	assert.Contains(t, rerr.Error(), "search_grounding")
}
