// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoQuestions is returned when a run is started without questions.
var ErrNoQuestions = errors.New("no questions to answer")

// ConfigError reports invalid or missing configuration. It is raised before
// any network call is made.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// QuestionError reports a question that could not be answered.
type QuestionError struct {
	Index    int
	Question string
	Err      error
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index+1, e.Err)
}

func (e *QuestionError) Unwrap() error { return e.Err }
