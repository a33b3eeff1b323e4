package storage

import "fmt"

type Error struct {
	Tag string
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Tag == e.Tag
}

var (
	ErrNotFound      = &Error{Tag: "NotFound", Msg: "not found"}
	ErrAlreadyExists = &Error{Tag: "AlreadyExists", Msg: "already exists"}
)

func notFound(ns string, id string) error {
	return &Error{Tag: ErrNotFound.Tag, Msg: fmt.Sprintf("%s %s not found", ns, id)}
}

func alreadyExists(ns string, id string) error {
	return &Error{Tag: ErrAlreadyExists.Tag, Msg: fmt.Sprintf("%s %s already exists", ns, id)}
}
