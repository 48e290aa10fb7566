package models

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrNotFound = stderrors.New("not found")
	ErrConflict = stderrors.New("tracking number already exists")
)

// ValidationError: обязательное поле пустое или некорректное. Возвращается до обращения к хранилищу.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Required(field string) error {
	return &ValidationError{Field: field}
}

// TransportError: хранилище недоступно или запрос упал по инфраструктурной причине.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// PartialFailureWarning means the primary write succeeded but a follow-up write
// (status mirror, initial event) did not. The primary result is still valid.
type PartialFailureWarning struct {
	Op  string
	Err error
}

func (w *PartialFailureWarning) Error() string {
	return fmt.Sprintf("partial failure: %s: %v", w.Op, w.Err)
}

func (w *PartialFailureWarning) Unwrap() error { return w.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

func IsTransport(err error) bool {
	var t *TransportError
	return stderrors.As(err, &t)
}

func AsPartialFailure(err error) (*PartialFailureWarning, bool) {
	var w *PartialFailureWarning
	if stderrors.As(err, &w) {
		return w, true
	}
	return nil, false
}
