package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhub/backend/internal/apperr"
)

func TestKindAndCode(t *testing.T) {
	err := apperr.NotFound("Task", "abc")

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.False(t, apperr.IsKind(err, apperr.KindAlreadyExists))
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestAssigneeErrorsShareKind(t *testing.T) {
	cases := map[string]error{
		apperr.CodeAssigneeNotFound:  apperr.AssigneeNotFound("u1"),
		apperr.CodeAssigneeNotMember: apperr.AssigneeNotMember("u1"),
		apperr.CodeAssigneeIsViewer:  apperr.AssigneeIsViewer("u1"),
	}

	for wantCode, err := range cases {
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidAssignee), wantCode)
		assert.Equal(t, wantCode, apperr.CodeOf(err))
	}
}

func TestTransactionFailureWraps(t *testing.T) {
	cause := errors.New("disk full")
	err := apperr.TransactionFailure(cause)

	assert.True(t, apperr.IsKind(err, apperr.KindTransactionFailure))
	assert.True(t, errors.Is(err, cause))
}

func TestTransactionFailurePreservesInnerAppError(t *testing.T) {
	// A typed error surfaced inside a transaction must keep its own kind
	// visible through the wrapper chain.
	inner := apperr.NotFound("Project", "p1")
	err := apperr.TransactionFailure(fmt.Errorf("tx: %w", inner))

	var appErr *apperr.Error
	assert.True(t, errors.As(err, &appErr))
}

func TestWrappedThroughFmt(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperr.AlreadyExists("User", "a@b.c"))

	assert.True(t, apperr.IsKind(err, apperr.KindAlreadyExists))
	assert.Equal(t, apperr.CodeAlreadyExists, apperr.CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, "", apperr.CodeOf(errors.New("plain")))
	assert.False(t, apperr.IsKind(errors.New("plain"), apperr.KindNotFound))
}
