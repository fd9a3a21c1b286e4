// Package apperr defines the typed errors the service layer surfaces to the
// HTTP boundary. Each error carries a Kind for status mapping and a stable
// machine-readable Code the client can branch on.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
	KindPermissionDenied
	KindInvalidAssignee
	KindSelfActionForbidden
	KindTransactionFailure
)

const (
	CodeNotFound            = "not_found"
	CodeAlreadyExists       = "already_exists"
	CodePermissionDenied    = "permission_denied"
	CodeAssigneeNotFound    = "assignee_not_found"
	CodeAssigneeNotMember   = "assignee_not_in_project"
	CodeAssigneeIsViewer    = "assignee_is_viewer"
	CodeSelfActionForbidden = "self_action_forbidden"
	CodeTransactionFailure  = "transaction_failure"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Entity  string
	ID      string
	wrapped error
}

func (e *Error) Error() string {
	if e.Entity != "" && e.ID != "" {
		return fmt.Sprintf("%s: %s %s: %s", e.Code, e.Entity, e.ID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// IsKind reports whether err is an *Error of the given kind, unwrapping as
// needed.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}

// CodeOf returns the machine-readable code of err, or "" when err is not an
// *Error.
func CodeOf(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return ""
	}
	return appErr.Code
}

func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: "does not exist",
		Entity:  entity,
		ID:      id,
	}
}

func AlreadyExists(entity, id string) *Error {
	return &Error{
		Kind:    KindAlreadyExists,
		Code:    CodeAlreadyExists,
		Message: "already exists",
		Entity:  entity,
		ID:      id,
	}
}

func PermissionDenied(message string) *Error {
	return &Error{
		Kind:    KindPermissionDenied,
		Code:    CodePermissionDenied,
		Message: message,
	}
}

func AssigneeNotFound(assigneeID string) *Error {
	return &Error{
		Kind:    KindInvalidAssignee,
		Code:    CodeAssigneeNotFound,
		Message: "assignee user does not exist",
		Entity:  "User",
		ID:      assigneeID,
	}
}

func AssigneeNotMember(assigneeID string) *Error {
	return &Error{
		Kind:    KindInvalidAssignee,
		Code:    CodeAssigneeNotMember,
		Message: "assignee is not a member of the project",
		Entity:  "User",
		ID:      assigneeID,
	}
}

func AssigneeIsViewer(assigneeID string) *Error {
	return &Error{
		Kind:    KindInvalidAssignee,
		Code:    CodeAssigneeIsViewer,
		Message: "assignee holds a read-only viewer role in the project",
		Entity:  "User",
		ID:      assigneeID,
	}
}

func SelfActionForbidden(message string) *Error {
	return &Error{
		Kind:    KindSelfActionForbidden,
		Code:    CodeSelfActionForbidden,
		Message: message,
	}
}

// TransactionFailure wraps a store-level abort. The original error stays
// reachable through Unwrap for boundary logging, never for the client.
func TransactionFailure(err error) *Error {
	return &Error{
		Kind:    KindTransactionFailure,
		Code:    CodeTransactionFailure,
		Message: "the operation could not be completed",
		wrapped: err,
	}
}
