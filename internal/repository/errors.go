package repository

import "errors"

// Storage failure taxonomy. AlreadyExists is benign: upsert conflicts map to
// success and callers never see it unless they ask.
var (
	ErrAlreadyExists     = errors.New("record already exists")
	ErrDatabase          = errors.New("database operation failed")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrExtractionFailed  = errors.New("entity extraction failed")
)
