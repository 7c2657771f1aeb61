package post

import "errors"

var (
	ErrNotFound         = errors.New("post not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidStatus    = errors.New("invalid post status")
	ErrTitleRequired    = errors.New("title is required in at least one locale")
	ErrInvalidSchedule  = errors.New("expire_at must be after publish_at")
)
