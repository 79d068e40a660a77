package registry

import (
	"context"
	"errors"
)

// ErrAlreadyReserved is returned when a filename is already held by another
// upload, either in flight or fully indexed.
var ErrAlreadyReserved = errors.New("filename already reserved")

// Registry reserves filenames so two concurrent uploads of the same name
// cannot both pass the duplicate check. Reserve is atomic: exactly one
// caller wins.
type Registry interface {
	Reserve(ctx context.Context, filename string) error
	Release(ctx context.Context, filename string) error
}
