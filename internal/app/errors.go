package app

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("document not found")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrAnswerGenerationFailed wraps a failed synthesis call to the
	// language model.
	ErrAnswerGenerationFailed = errors.New("answer generation failed")
)
