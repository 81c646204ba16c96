// Package services holds the business operations behind the HTTP API and the CLI.
// Every operation is scoped to the calling user.
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/validation"
)

var (
	ErrNotFound     = errors.New("not_found")
	ErrInvalidInput = errors.New("validation_failed")
	ErrQuoteLocked  = errors.New("quote_locked")
	ErrClientInUse  = errors.New("client_in_use")
)

// ValidationError carries field violations and matches ErrInvalidInput.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrInvalidInput, len(e.Violations))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// notFound turns gorm's missing-record error into ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// Page is a 1-based page request. Zero values mean the first page of 20.
type Page struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

const maxPerPage = 100

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return q.Offset((p.Page - 1) * p.PerPage).Limit(p.PerPage)
}
