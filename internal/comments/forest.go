package comments

import "github.com/emilythestrangee/forum/backend/internal/models"

// Node is a comment with its direct replies.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// BuildForest links a flat, ordered list of comments into trees. Every node
// is allocated before any linking, so parents may appear after their
// replies in the input. A reply whose parent is not in flat is dropped:
// when the list was cut at a maximum depth, such replies are unreachable.
// Sibling order follows input order.
func BuildForest(flat []models.Comment) []*Node {
	arena := make([]Node, len(flat))
	index := make(map[string]*Node, len(flat))
	for i, c := range flat {
		arena[i] = Node{Comment: c, Replies: []*Node{}}
		index[c.ID] = &arena[i]
	}

	roots := []*Node{}
	for i := range arena {
		n := &arena[i]
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := index[*n.ParentID]; ok {
			parent.Replies = append(parent.Replies, n)
		}
	}
	return roots
}
