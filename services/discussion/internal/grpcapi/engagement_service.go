// Package grpcapi serves like operations and decorated posts over gRPC.
package grpcapi

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/discussion-platform/services/discussion/internal/aggregate"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// EngagementService implements EngagementServer.
type EngagementService struct {
	Likes ledger.Ledger
	Views *aggregate.Service
	Log   *zap.Logger
}

var _ EngagementServer = (*EngagementService)(nil)

func (s *EngagementService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func parseKind(raw string) (target.Kind, error) {
	kind, err := target.ParseKind(raw)
	if err != nil {
		return "", errInvalidArgument("INVALID_KIND", err.Error(), map[string]string{"kind": "must be post, comment or reply"})
	}
	return kind, nil
}

func (s *EngagementService) ToggleLike(ctx context.Context, req *ToggleLikeRequest) (*ToggleLikeResponse, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	res, err := s.Likes.Toggle(ctx, req.UserID, target.Of(kind, req.ID))
	if err != nil {
		return nil, toStatus(ctx, s.logger(), "ToggleLike", err)
	}
	return &ToggleLikeResponse{Liked: res.Liked, LikeCount: res.LikeCount}, nil
}

func (s *EngagementService) LikeCount(ctx context.Context, req *LikeCountRequest) (*LikeCountResponse, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	n, err := s.Likes.Count(ctx, target.Of(kind, req.ID))
	if err != nil {
		return nil, toStatus(ctx, s.logger(), "LikeCount", err)
	}
	return &LikeCountResponse{LikeCount: n}, nil
}

func (s *EngagementService) HasLiked(ctx context.Context, req *HasLikedRequest) (*HasLikedResponse, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	liked, err := s.Likes.HasLiked(ctx, req.UserID, target.Of(kind, req.ID))
	if err != nil {
		return nil, toStatus(ctx, s.logger(), "HasLiked", err)
	}
	return &HasLikedResponse{Liked: liked}, nil
}

func (s *EngagementService) BatchLikeCounts(ctx context.Context, req *BatchLikeCountsRequest) (*BatchLikeCountsResponse, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	counts, err := s.Likes.BatchCounts(ctx, kind, req.IDs)
	if err != nil {
		return nil, toStatus(ctx, s.logger(), "BatchLikeCounts", err)
	}
	return &BatchLikeCountsResponse{Counts: counts}, nil
}

func (s *EngagementService) DecoratePost(ctx context.Context, req *DecoratePostRequest) (*DecoratePostResponse, error) {
	if req.PostID <= 0 {
		return nil, errInvalidArgument("INVALID_ID", "postId must be positive", map[string]string{"postId": "must be positive"})
	}
	post, err := s.Views.DecoratePost(ctx, req.PostID)
	if err != nil {
		return nil, toStatus(ctx, s.logger(), "DecoratePost", err)
	}
	return &DecoratePostResponse{Post: post}, nil
}
