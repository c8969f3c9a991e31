package services

import "errors"

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrNotFound   = errors.New("not found")
	ErrOutOfStock = errors.New("product out of stock")
)
