package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "not found", err: status.Error(codes.NotFound, "missing"), expected: ErrNotFound},
		{name: "permission denied", err: status.Error(codes.PermissionDenied, "denied"), expected: ErrPermissionDenied},
		{name: "unauthenticated", err: status.Error(codes.Unauthenticated, "expired"), expected: ErrPermissionDenied},
		{name: "invalid argument", err: status.Error(codes.InvalidArgument, "bad"), expected: ErrInvalidArgument},
		{name: "failed precondition", err: status.Error(codes.FailedPrecondition, "index"), expected: ErrInvalidArgument},
		{name: "unavailable", err: status.Error(codes.Unavailable, "down"), expected: ErrUnavailable},
		{name: "deadline exceeded", err: status.Error(codes.DeadlineExceeded, "slow"), expected: ErrUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.expected)
		})
	}
}

func TestClassifyPassesThroughUnknown(t *testing.T) {
	cause := errors.New("plain failure")
	assert.Equal(t, cause, classify(cause))
}
