package votes

import "github.com/emilythestrangee/forum/backend/internal/models"

// Kind selects which votable a vote targets.
type Kind int

const (
	KindPost Kind = iota
	KindComment
)

func (k Kind) String() string {
	if k == KindComment {
		return "comment"
	}
	return "post"
}

// Label is the capitalised name used in client messages.
func (k Kind) Label() string {
	if k == KindComment {
		return "Comment"
	}
	return "Post"
}

func (k Kind) targetModel() interface{} {
	if k == KindComment {
		return &models.Comment{}
	}
	return &models.Post{}
}

func (k Kind) voteModel() interface{} {
	if k == KindComment {
		return &models.CommentVote{}
	}
	return &models.PostVote{}
}

func (k Kind) voteColumn() string {
	if k == KindComment {
		return "comment_id"
	}
	return "post_id"
}
