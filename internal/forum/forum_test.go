package forum_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumx/forumx/internal/api"
	"github.com/forumx/forumx/internal/forum"
)

type memberTokens struct{}

func (memberTokens) Authenticated() bool                         { return true }
func (memberTokens) Token(context.Context, bool) (string, error) { return "tok", nil }
func (memberTokens) ForceSignOut()                               {}

func setupService(t *testing.T, handler http.Handler) *forum.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return forum.NewService(api.NewClient(srv.URL, memberTokens{}, 5*time.Second))
}

// --- Vote Tests ---

func TestVotePost_OneVoteCallThenRefetch(t *testing.T) {
	var voteCalls, getCalls int
	var votedPath string
	var voteBody map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /posts/vote/{id}", func(w http.ResponseWriter, r *http.Request) {
		voteCalls++
		votedPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&voteBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	})
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		getCalls++
		_ = json.NewEncoder(w).Encode(forum.Post{ID: "p1", Title: "First", UpVote: 4})
	})

	svc := setupService(t, mux)

	post, err := svc.VotePost(context.Background(), "p1", forum.Upvote, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, 1, voteCalls, "exactly one vote call per mutation")
	assert.Equal(t, "/posts/vote/p1", votedPath)
	assert.Equal(t, "upvote", voteBody["type"])
	assert.Equal(t, "alice@example.com", voteBody["userEmail"])
	assert.Equal(t, 1, getCalls, "post is refetched after the vote")
	assert.Equal(t, 4, post.UpVote, "local tally comes from the refetch")
}

func TestVoteComment_RefetchesCommentList(t *testing.T) {
	var voteCalls, listCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /comments/vote/{id}", func(w http.ResponseWriter, r *http.Request) {
		voteCalls++
		_, _ = w.Write([]byte("{}"))
	})
	mux.HandleFunc("GET /comments", func(w http.ResponseWriter, r *http.Request) {
		listCalls++
		assert.Equal(t, "p1", r.URL.Query().Get("postId"))
		_ = json.NewEncoder(w).Encode([]forum.Comment{{ID: "c1", PostID: "p1", UpVote: 2}})
	})

	svc := setupService(t, mux)

	comments, err := svc.VoteComment(context.Background(), "c1", "p1", forum.Downvote, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, 1, voteCalls)
	assert.Equal(t, 1, listCalls)
	require.Len(t, comments, 1)
	assert.Equal(t, 2, comments[0].UpVote)
}

// --- Post Limit Tests ---

func fivePosts() []forum.Post {
	posts := make([]forum.Post, forum.FreePostLimit)
	for i := range posts {
		posts[i] = forum.Post{ID: "p", AuthorEmail: "alice@example.com"}
	}
	return posts
}

func TestCreatePost_NonMemberAtLimitRejected(t *testing.T) {
	var createCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user-posts/{email}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(fivePosts())
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		createCalls++
	})

	svc := setupService(t, mux)

	_, err := svc.CreatePost(context.Background(), forum.PostDraft{
		AuthorEmail: "alice@example.com",
		Title:       "one too many",
	}, false)

	assert.ErrorIs(t, err, forum.ErrPostLimit)
	assert.Equal(t, 0, createCalls, "no create call when over the limit")
}

func TestCreatePost_MemberBypassesLimit(t *testing.T) {
	var listedCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user-posts/{email}", func(w http.ResponseWriter, r *http.Request) {
		listedCalls++
		_ = json.NewEncoder(w).Encode(fivePosts())
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		var body forum.Post
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, 0, body.UpVote, "new posts start with zero votes")
		body.ID = "p6"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	svc := setupService(t, mux)

	post, err := svc.CreatePost(context.Background(), forum.PostDraft{
		AuthorEmail: "alice@example.com",
		Title:       "gold content",
	}, true)

	require.NoError(t, err)
	assert.Equal(t, "p6", post.ID)
	assert.Equal(t, 0, listedCalls, "members skip the limit lookup")
}

func TestCreatePost_UnderLimitAllowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user-posts/{email}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]forum.Post{})
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(forum.Post{ID: "p1"})
	})

	svc := setupService(t, mux)

	post, err := svc.CreatePost(context.Background(), forum.PostDraft{
		AuthorEmail: "alice@example.com",
		Title:       "first post",
	}, false)

	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
}

// --- Report Tests ---

func TestReportComment_PatchesReportEndpoint(t *testing.T) {
	var path string
	var body map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /comments/report/{id}", func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte("{}"))
	})

	svc := setupService(t, mux)

	err := svc.ReportComment(context.Background(), "c9", "spam")

	require.NoError(t, err)
	assert.Equal(t, "/comments/report/c9", path)
	assert.Equal(t, "spam", body["feedback"])
}

// --- Thread Tests ---

func TestThreads_NestsRepliesUnderParents(t *testing.T) {
	comments := []forum.Comment{
		{ID: "c1", Text: "top"},
		{ID: "c2", ParentID: "c1", Text: "reply"},
		{ID: "c3", ParentID: "c2", Text: "nested reply"},
		{ID: "c4", Text: "another top"},
	}

	threads := forum.Threads(comments)

	require.Len(t, threads, 2)
	assert.Equal(t, "c1", threads[0].Comment.ID)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "c2", threads[0].Replies[0].Comment.ID)
	require.Len(t, threads[0].Replies[0].Replies, 1)
	assert.Equal(t, "c3", threads[0].Replies[0].Replies[0].Comment.ID)
	assert.Empty(t, threads[1].Replies)
}

func TestThreads_OrphanReplyBecomesTopLevel(t *testing.T) {
	comments := []forum.Comment{
		{ID: "c2", ParentID: "gone", Text: "orphan"},
	}

	threads := forum.Threads(comments)

	require.Len(t, threads, 1)
	assert.Equal(t, "c2", threads[0].Comment.ID)
}
