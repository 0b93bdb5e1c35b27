package model

import "errors"

var (
	ErrNoSession        = errors.New("no session")
	ErrCorruptPrincipal = errors.New("corrupt principal record")
	ErrInvalidPrincipal = errors.New("invalid principal record")
	ErrInvalidInput     = errors.New("invalid input")
)
