// path: internal/domain/template/errors.go
package template

import "errors"

var (
	ErrInvalidName   = errors.New("template name must not be empty")
	ErrInvalidPrompt = errors.New("template prompt must not be empty")
	ErrNotFound      = errors.New("template not found")
)
