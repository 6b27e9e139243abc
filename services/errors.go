package services

import "errors"

// Sentinel errors shared by the service layer. Controllers translate
// these into HTTP statuses; not-found and forbidden are deliberately
// distinct so the client can tell "this was deleted" from "request
// access".
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("insufficient permissions")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("already exists")
)
