package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "discussion.v1.EngagementService"

// EngagementServer is the server side of EngagementService.
type EngagementServer interface {
	ToggleLike(context.Context, *ToggleLikeRequest) (*ToggleLikeResponse, error)
	LikeCount(context.Context, *LikeCountRequest) (*LikeCountResponse, error)
	HasLiked(context.Context, *HasLikedRequest) (*HasLikedResponse, error)
	BatchLikeCounts(context.Context, *BatchLikeCountsRequest) (*BatchLikeCountsResponse, error)
	DecoratePost(context.Context, *DecoratePostRequest) (*DecoratePostResponse, error)
}

func unary[Req, Resp any](name string, call func(EngagementServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EngagementServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EngagementServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EngagementServiceDesc describes EngagementService for grpc.Server.RegisterService.
var EngagementServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EngagementServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ToggleLike", EngagementServer.ToggleLike),
		unary("LikeCount", EngagementServer.LikeCount),
		unary("HasLiked", EngagementServer.HasLiked),
		unary("BatchLikeCounts", EngagementServer.BatchLikeCounts),
		unary("DecoratePost", EngagementServer.DecoratePost),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "discussion/v1/engagement.proto",
}

func RegisterEngagementServer(s grpc.ServiceRegistrar, srv EngagementServer) {
	s.RegisterService(&EngagementServiceDesc, srv)
}

// EngagementClient calls EngagementService using the JSON codec.
type EngagementClient struct {
	cc grpc.ClientConnInterface
}

func NewEngagementClient(cc grpc.ClientConnInterface) *EngagementClient {
	return &EngagementClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngagementClient) ToggleLike(ctx context.Context, in *ToggleLikeRequest, opts ...grpc.CallOption) (*ToggleLikeResponse, error) {
	return invoke[ToggleLikeResponse](ctx, c.cc, "ToggleLike", in, opts)
}

func (c *EngagementClient) LikeCount(ctx context.Context, in *LikeCountRequest, opts ...grpc.CallOption) (*LikeCountResponse, error) {
	return invoke[LikeCountResponse](ctx, c.cc, "LikeCount", in, opts)
}

func (c *EngagementClient) HasLiked(ctx context.Context, in *HasLikedRequest, opts ...grpc.CallOption) (*HasLikedResponse, error) {
	return invoke[HasLikedResponse](ctx, c.cc, "HasLiked", in, opts)
}

func (c *EngagementClient) BatchLikeCounts(ctx context.Context, in *BatchLikeCountsRequest, opts ...grpc.CallOption) (*BatchLikeCountsResponse, error) {
	return invoke[BatchLikeCountsResponse](ctx, c.cc, "BatchLikeCounts", in, opts)
}

func (c *EngagementClient) DecoratePost(ctx context.Context, in *DecoratePostRequest, opts ...grpc.CallOption) (*DecoratePostResponse, error) {
	return invoke[DecoratePostResponse](ctx, c.cc, "DecoratePost", in, opts)
}
