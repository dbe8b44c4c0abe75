package grpcapi

import "github.com/example/discussion-platform/services/discussion/internal/aggregate"

type ToggleLikeRequest struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
}

type ToggleLikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

type LikeCountRequest struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

type LikeCountResponse struct {
	LikeCount int64 `json:"likeCount"`
}

type HasLikedRequest struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
}

type HasLikedResponse struct {
	Liked bool `json:"liked"`
}

type BatchLikeCountsRequest struct {
	Kind string  `json:"kind"`
	IDs  []int64 `json:"ids"`
}

// BatchLikeCountsResponse carries a count for every requested id.
type BatchLikeCountsResponse struct {
	Counts map[int64]int64 `json:"counts"`
}

type DecoratePostRequest struct {
	PostID int64 `json:"postId"`
}

type DecoratePostResponse struct {
	Post aggregate.DecoratedPost `json:"post"`
}
