// path: internal/jobqueue/errors.go
package jobqueue

import "errors"

var ErrNoJobAvailable = errors.New("no job currently reservable")
