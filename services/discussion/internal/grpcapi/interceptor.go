package grpcapi

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/example/discussion-platform/internal/platform/httpserver"
)

// requestIDKey is the lowercase metadata form of the HTTP request id header.
var requestIDKey = strings.ToLower(httpserver.HeaderRequestID)

// UnaryRequestID gives every call a request id, taken from incoming metadata
// when present, and echoes it back in the response header.
func UnaryRequestID() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var rid string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDKey); len(v) > 0 {
				rid = v[0]
			}
		}
		rid = httpserver.NormalizeRequestID(rid)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, rid))
		return handler(httpserver.ContextWithRequestID(ctx, rid), req)
	}
}
