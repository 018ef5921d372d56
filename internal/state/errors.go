package state

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownObject is matched by InvariantErrors for identifiers that
	// are not part of the Scene.
	ErrUnknownObject = errors.New("state: unknown object")
	// ErrGroupMember is matched by InvariantErrors for identifiers that
	// belong to a group where a root object is required.
	ErrGroupMember = errors.New("state: object is a group member")
)

// InvariantError reports an operation on an identifier the Scene cannot
// accept there. It is a programming error in the calling layer; every
// identifier-taking operation returns it instead of panicking.
type InvariantError struct {
	Op  string
	ID  string
	Err error // ErrUnknownObject when nil
}

func (e *InvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == ErrGroupMember {
		return fmt.Sprintf("state: %s: object %q is a group member", e.Op, e.ID)
	}
	return fmt.Sprintf("state: %s: unknown object %q", e.Op, e.ID)
}

func (e *InvariantError) Is(target error) bool {
	if e.Err != nil {
		return target == e.Err
	}
	return target == ErrUnknownObject
}

func unknown(op, id string) error {
	return &InvariantError{Op: op, ID: id}
}

func member(op, id string) error {
	return &InvariantError{Op: op, ID: id, Err: ErrGroupMember}
}

// DecodeError is returned for empty, malformed or unsupported documents.
// A failed decode never touches the live Scene.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return fmt.Sprintf("state: decode: %v", e.Err)
	}
	return fmt.Sprintf("state: decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func decodeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Op: op, Err: err}
}
