// path: internal/domain/insights/errors.go
package insights

import "errors"

var ErrNotFound = errors.New("post insights not found")
