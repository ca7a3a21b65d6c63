package db

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors shared by the repositories. Callers branch on these with
// errors.Is; the underlying Firestore error stays wrapped for logging.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrPermissionDenied maps Firestore permission failures; the user-facing
	// advice is to check that they are logged in.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidArgument maps malformed-write precondition failures.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable maps transient backend unavailability. Nothing retries
	// automatically; the user resubmits manually.
	ErrUnavailable = errors.New("service unavailable")
)

// classify wraps a Firestore error with the matching sentinel based on its
// gRPC status code. Unknown codes pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
