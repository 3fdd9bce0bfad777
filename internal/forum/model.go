package forum

import "errors"

// FreePostLimit is how many posts a non-member author may create before the
// membership upgrade is required.
const FreePostLimit = 5

// ErrPostLimit is returned when a non-member author is at the free post limit.
var ErrPostLimit = errors.New("post limit reached, membership required to add more posts")

// VoteType is the direction of a vote mutation.
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

// Post is a forum post as stored by the backend.
type Post struct {
	ID          string   `json:"_id"`
	AuthorName  string   `json:"authorName"`
	AuthorEmail string   `json:"authorEmail"`
	AuthorImage string   `json:"authorImage"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	UpVote      int      `json:"upVote"`
	DownVote    int      `json:"downVote"`
	Image       string   `json:"image"`
	CreatedAt   string   `json:"createdAt"`
}

// PostDraft is the author-supplied part of a new post.
type PostDraft struct {
	AuthorName  string   `json:"authorName"`
	AuthorEmail string   `json:"authorEmail"`
	AuthorImage string   `json:"authorImage"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
}

// Comment is a post comment; replies carry the parent comment's id.
type Comment struct {
	ID        string `json:"_id"`
	PostID    string `json:"postId"`
	ParentID  string `json:"parentId,omitempty"`
	Text      string `json:"text"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	UserPhoto string `json:"userPhoto"`
	UpVote    int    `json:"upVote"`
	DownVote  int    `json:"downVote"`
	Reported  bool   `json:"reported"`
	Feedback  string `json:"feedback,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// CommentDraft is the author-supplied part of a new comment or reply.
type CommentDraft struct {
	PostID    string `json:"postId"`
	ParentID  string `json:"parentId,omitempty"`
	Text      string `json:"text"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	UserPhoto string `json:"userPhoto"`
}

// Tag is a selectable post tag.
type Tag struct {
	Name string `json:"name"`
}

// Thread is a comment with its direct replies, for nested rendering.
type Thread struct {
	Comment Comment  `json:"comment"`
	Replies []Thread `json:"replies,omitempty"`
}

// Threads arranges a flat comment list into reply trees. Comments whose
// parent is missing from the list are treated as top-level.
func Threads(comments []Comment) []Thread {
	byParent := make(map[string][]Comment)
	ids := make(map[string]bool, len(comments))
	for _, c := range comments {
		ids[c.ID] = true
	}
	for _, c := range comments {
		parent := c.ParentID
		if parent != "" && !ids[parent] {
			parent = ""
		}
		byParent[parent] = append(byParent[parent], c)
	}

	var build func(parent string) []Thread
	build = func(parent string) []Thread {
		children := byParent[parent]
		threads := make([]Thread, 0, len(children))
		for _, c := range children {
			threads = append(threads, Thread{
				Comment: c,
				Replies: build(c.ID),
			})
		}
		return threads
	}
	return build("")
}
