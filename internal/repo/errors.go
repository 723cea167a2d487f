package repo

import "errors"

var (
	ErrNotFound         = errors.New("repo: not found")
	ErrAlreadyExists    = errors.New("repo: already exists")
	ErrInvalidOperation = errors.New("repo: invalid operation")
	ErrNotRepository    = errors.New("repo: not a gg repository")
	ErrNothingToCommit  = errors.New("repo: nothing to commit")
	ErrAmbiguous        = errors.New("repo: ambiguous commit id")
)
