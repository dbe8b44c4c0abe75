package grpcapi

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/example/discussion-platform/services/discussion/internal/aggregate"
	"github.com/example/discussion-platform/services/discussion/internal/ledger"
	"github.com/example/discussion-platform/services/discussion/internal/store"
	"github.com/example/discussion-platform/services/discussion/internal/target"
	"github.com/example/discussion-platform/services/discussion/internal/threading"
)

type fixture struct {
	client *EngagementClient
	engine *threading.Engine
	likes  ledger.Ledger
}

func newFixture(t *testing.T, likes ledger.Ledger) *fixture {
	t.Helper()
	content := store.NewInMemoryContentStore()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryRequestID()))
	RegisterEngagementServer(srv, &EngagementService{Likes: likes, Views: aggregate.New(content, likes)})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{client: NewEngagementClient(conn), engine: threading.New(content), likes: likes}
}

func TestToggleLike_Involution(t *testing.T) {
	f := newFixture(t, ledger.NewInMemoryLedger())
	ctx := context.Background()

	res, err := f.client.ToggleLike(ctx, &ToggleLikeRequest{UserID: 1, Kind: "post", ID: 5})
	require.NoError(t, err)
	assert.Equal(t, &ToggleLikeResponse{Liked: true, LikeCount: 1}, res)

	has, err := f.client.HasLiked(ctx, &HasLikedRequest{UserID: 1, Kind: "POST", ID: 5})
	require.NoError(t, err)
	assert.True(t, has.Liked)

	res, err = f.client.ToggleLike(ctx, &ToggleLikeRequest{UserID: 1, Kind: "post", ID: 5})
	require.NoError(t, err)
	assert.Equal(t, &ToggleLikeResponse{Liked: false, LikeCount: 0}, res)

	n, err := f.client.LikeCount(ctx, &LikeCountRequest{Kind: "post", ID: 5})
	require.NoError(t, err)
	assert.Zero(t, n.LikeCount)
}

func TestBatchLikeCounts(t *testing.T) {
	f := newFixture(t, ledger.NewInMemoryLedger())
	ctx := context.Background()

	for _, u := range []int64{1, 2} {
		_, err := f.likes.Toggle(ctx, u, target.Of(target.Comment, 10))
		require.NoError(t, err)
	}
	_, err := f.likes.Toggle(ctx, 3, target.Of(target.Comment, 11))
	require.NoError(t, err)

	out, err := f.client.BatchLikeCounts(ctx, &BatchLikeCountsRequest{Kind: "comment", IDs: []int64{10, 11, 12}})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{10: 2, 11: 1, 12: 0}, out.Counts)
}

func TestUnknownKind_InvalidArgument(t *testing.T) {
	f := newFixture(t, ledger.NewInMemoryLedger())

	_, err := f.client.LikeCount(context.Background(), &LikeCountRequest{Kind: "thread", ID: 1})
	require.Error(t, err)
	st := status.Convert(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	var reason string
	var fields []string
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			reason = v.GetReason()
		case *errdetails.BadRequest:
			for _, fv := range v.GetFieldViolations() {
				fields = append(fields, fv.GetField())
			}
		}
	}
	assert.Equal(t, "INVALID_KIND", reason)
	assert.Equal(t, []string{"kind"}, fields)
}

func TestToggleLike_InvalidUser(t *testing.T) {
	f := newFixture(t, ledger.NewInMemoryLedger())

	_, err := f.client.ToggleLike(context.Background(), &ToggleLikeRequest{UserID: 0, Kind: "reply", ID: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDecoratePost(t *testing.T) {
	f := newFixture(t, ledger.NewInMemoryLedger())
	ctx := context.Background()

	p, err := f.engine.CreatePost(ctx, threading.NewPost{AuthorID: 1, Title: "t", Content: "c"})
	require.NoError(t, err)
	c, err := f.engine.CreateComment(ctx, p.ID, 2, "hi")
	require.NoError(t, err)
	_, err = f.likes.Toggle(ctx, 3, target.Of(target.Comment, c.ID))
	require.NoError(t, err)

	out, err := f.client.DecoratePost(ctx, &DecoratePostRequest{PostID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, out.Post.ID)
	require.Len(t, out.Post.Comments, 1)
	assert.Equal(t, int64(1), out.Post.Comments[0].LikeCount)

	_, err = f.client.DecoratePost(ctx, &DecoratePostRequest{PostID: 999})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.client.DecoratePost(ctx, &DecoratePostRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

type brokenLedger struct {
	ledger.Ledger
}

func (brokenLedger) Count(context.Context, target.Target) (int64, error) {
	return 0, errors.New("dial tcp: refused")
}

func TestStorageFailure_Internal(t *testing.T) {
	f := newFixture(t, brokenLedger{Ledger: ledger.NewInMemoryLedger()})

	_, err := f.client.LikeCount(context.Background(), &LikeCountRequest{Kind: "post", ID: 1})
	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "refused")
}

func TestRequestID_EchoedInHeader(t *testing.T) {
	f := newFixture(t, ledger.NewInMemoryLedger())

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "rpc-77")
	var header metadata.MD
	_, err := f.client.LikeCount(ctx, &LikeCountRequest{Kind: "post", ID: 1}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"rpc-77"}, header.Get("x-request-id"))

	header = nil
	_, err = f.client.LikeCount(context.Background(), &LikeCountRequest{Kind: "post", ID: 1}, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get("x-request-id"), 1)
	assert.NotEmpty(t, header.Get("x-request-id")[0])
}
