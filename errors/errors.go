package errors

import "fmt"

var (
	ErrRoomNotFound       = fmt.Errorf("room not found")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyCensoredWords = fmt.Errorf("no censored words have been found")
	ErrInvalidCharacter   = fmt.Errorf("replacement must be a single character")
)
