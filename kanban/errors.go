package kanban

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidHours    = errors.New("invalid hours")
	ErrInvalidAuthor   = errors.New("invalid author")
	ErrInvalidContent  = errors.New("invalid content")
)
