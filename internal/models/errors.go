package models

import "errors"

var (
	// ErrCorpusSource marks a primary corpus source that could not produce documents.
	ErrCorpusSource = errors.New("corpus source failure")
	// ErrStorage marks an unexpected failure while appending entries.
	ErrStorage = errors.New("storage failure")
	// ErrUnsupportedFormat is returned for corpus files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyQuery        = errors.New("empty query")
)
