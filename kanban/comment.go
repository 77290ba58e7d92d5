package kanban

import (
	"strings"
	"time"
)

// Comment is an append-only note attached to a task. Comments are owned by
// the task that contains them and are never edited or removed.
type Comment struct {
	ID        string
	Author    string
	Content   string
	CreatedAt time.Time
}

// NewComment constructs a normalized comment.
func NewComment(id, author, content string, now time.Time) (Comment, error) {
	id = strings.TrimSpace(id)
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if id == "" {
		return Comment{}, ErrInvalidID
	}
	if author == "" {
		return Comment{}, ErrInvalidAuthor
	}
	if content == "" {
		return Comment{}, ErrInvalidContent
	}
	return Comment{
		ID:        id,
		Author:    author,
		Content:   content,
		CreatedAt: now.UTC(),
	}, nil
}
