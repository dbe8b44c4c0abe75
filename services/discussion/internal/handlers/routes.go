package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/discussion-platform/services/discussion/internal/target"
)

// Mount registers every discussion route on r.
func Mount(r chi.Router, d Deps) {
	mountPosts(r, d)
	mountUsers(r, d)
}

func mountPosts(r chi.Router, d Deps) {
	r.Route("/posts", func(r chi.Router) {
		r.Post("/", CreatePost(d))
		r.Get("/", ListPosts(d))

		r.Route("/{postId}", func(r chi.Router) {
			r.Get("/", GetPost(d))
			r.Put("/", UpdatePost(d))
			r.Delete("/", DeletePost(d))
			r.Post("/publish", SetPublished(d, true))
			r.Post("/unpublish", SetPublished(d, false))
			r.Post("/views", RecordView(d))
			r.Get("/replies", RepliesByPost(d))
			r.Post("/like", ToggleLike(d, target.Post, "postId"))
			r.Get("/likes", ListLikes(d, target.Post, "postId"))

			r.Route("/comments", func(r chi.Router) {
				r.Post("/", CreateComment(d))
				r.Get("/", ListComments(d))

				r.Route("/{commentId}", func(r chi.Router) {
					r.Get("/", GetComment(d))
					r.Put("/", UpdateComment(d))
					r.Delete("/", DeleteComment(d))
					r.Get("/thread", CommentThread(d))
					r.Post("/like", ToggleLike(d, target.Comment, "commentId"))
					r.Get("/likes", ListLikes(d, target.Comment, "commentId"))

					r.Route("/replies", func(r chi.Router) {
						r.Post("/", CreateReplyToComment(d))
						r.Get("/", ListRepliesByComment(d))

						r.Route("/{replyId}", func(r chi.Router) {
							r.Get("/", GetReply(d))
							r.Put("/", UpdateReply(d))
							r.Delete("/", DeleteReply(d))
							r.Post("/replies", CreateReplyToReply(d))
							r.Get("/replies", ListRepliesByParentReply(d))
							r.Post("/like", ToggleLike(d, target.Reply, "replyId"))
							r.Get("/likes", ListLikes(d, target.Reply, "replyId"))
						})
					})
				})
			})
		})
	})
}

func mountUsers(r chi.Router, d Deps) {
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Get("/posts", UserPosts(d))
		r.Get("/comments", UserComments(d))
		r.Get("/replies", UserReplies(d))
		r.Get("/likes", UserLikes(d))
	})
}
