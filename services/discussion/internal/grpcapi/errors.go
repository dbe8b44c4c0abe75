package grpcapi

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/discussion-platform/internal/platform/httpserver"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/store"
)

const errorDomain = "discussion"

func errInvalidArgument(code, msg string, fieldViolations map[string]string) error {
	st := status.New(codes.InvalidArgument, msg)
	info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}

	bad := &errdetails.BadRequest{}
	for field, desc := range fieldViolations {
		bad.FieldViolations = append(bad.FieldViolations, &errdetails.BadRequest_FieldViolation{Field: field, Description: desc})
	}

	st2, err := st.WithDetails(info, bad)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

func errNotFound(code, msg string) error {
	st := status.New(codes.NotFound, msg)
	info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}
	st2, err := st.WithDetails(info)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

func errInternal(code, msg string) error {
	st := status.New(codes.Internal, msg)
	info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}
	st2, err := st.WithDetails(info)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

// toStatus maps domain errors onto gRPC status codes. Unknown errors are
// logged and hidden behind codes.Internal.
func toStatus(ctx context.Context, log *zap.Logger, method string, err error) error {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return errInvalidArgument("VALIDATION_FAILED", "request validation failed", verr.Fields)
	case errors.Is(err, ledger.ErrInvalidInput):
		return errInvalidArgument("INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		return errNotFound("NOT_FOUND", err.Error())
	default:
		log.Error("grpc call failed",
			zap.String("method", method),
			zap.String("request_id", httpserver.RequestIDFromContext(ctx)),
			zap.Error(err),
		)
		return errInternal("INTERNAL", "internal error")
	}
}
