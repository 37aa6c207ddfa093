// Package apperr holds the error kinds surfaced by the API and their HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidCredentials
	KindDuplicateEmail
	KindDuplicateReview
	KindEmptyOrder
	KindValidation
	KindInvalidTransition
	KindRateLimited
)

var statusByKind = map[Kind]int{
	KindInternal:           http.StatusInternalServerError,
	KindUnauthenticated:    http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindInvalidCredentials: http.StatusUnauthorized,
	KindDuplicateEmail:     http.StatusBadRequest,
	KindDuplicateReview:    http.StatusBadRequest,
	KindEmptyOrder:         http.StatusBadRequest,
	KindValidation:         http.StatusBadRequest,
	KindInvalidTransition:  http.StatusBadRequest,
	KindRateLimited:        http.StatusTooManyRequests,
}

// Error is a classified failure with a client-facing message. Cause is
// logged but never rendered.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func (e *Error) Status() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Non autorisé, token manquant ou invalide"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "Accès interdit"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "Ressource non trouvée"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Email ou mot de passe invalide"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "Cet email est déjà utilisé"}
	ErrDuplicateReview    = &Error{Kind: KindDuplicateReview, Message: "Vous avez déjà évalué ce produit"}
	ErrEmptyOrder         = &Error{Kind: KindEmptyOrder, Message: "Aucun article dans la commande"}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition, Message: "Transition de statut impossible"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "Trop de requêtes, réessayez plus tard"}
	ErrInternal           = &Error{Kind: KindInternal, Message: "Erreur interne du serveur"}
)

// Unauthenticated returns an Unauthenticated error with a specific message.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NotFound returns a NotFound error naming the missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden returns a Forbidden error with a specific message.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Internal wraps an unexpected failure. op names the failing operation.
func Internal(op string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: ErrInternal.Message, Cause: fmt.Errorf("%s: %w", op, cause)}
}

// From classifies err, treating anything unclassified as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: ErrInternal.Message, Cause: err}
}
