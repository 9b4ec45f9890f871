package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExists     = errors.New("session already exists")
	ErrPreviewNotFound   = errors.New("preview not found")
	ErrEmptyInput        = errors.New("input is empty")
	ErrBusy              = errors.New("a request is already in flight for this session")
	ErrWrongView         = errors.New("operation not supported by this view")
	ErrUnsupportedMedia  = errors.New("only image uploads are supported")
	ErrImageTooLarge     = errors.New("image exceeds the upload limit")
	ErrMissingCredential = errors.New("API key is not configured")
)

// FailureKind classifies a remote failure for logs and metrics.
type FailureKind string

const (
	FailureCredential FailureKind = "credential"
	FailureQuota      FailureKind = "quota"
	FailureTransport  FailureKind = "transport"
	FailureRemote     FailureKind = "remote"
)

// RemoteError wraps any transport or remote-side failure of an adapter call.
type RemoteError struct {
	Op   string
	Kind FailureKind
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// FailureKindOf reports the failure kind of err, or FailureRemote when err
// does not carry one.
func FailureKindOf(err error) FailureKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return FailureRemote
}
