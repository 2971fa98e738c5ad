package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/profile-api/internal/errs"
)

func uniqueErr() *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "users_username_key"`,
		TableName:      "users",
		ConstraintName: "users_username_key",
	}
}

func TestHandleError_UniqueViolationIsConflict(t *testing.T) {
	err := HandleError(fmt.Errorf("insert user: %w", uniqueErr()))

	httpErr := errs.From(err)
	assert.Equal(t, errs.KindConflict, httpErr.Kind)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "User already exists", httpErr.Message)
}

func TestHandleError_GeneratedUniqueMessage(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "sessions",
		ConstraintName: "sessions_token_key",
	})

	httpErr := errs.From(err)
	assert.Equal(t, errs.KindConflict, httpErr.Kind)
	assert.Equal(t, "SESSION_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A Session with this Token already exists", httpErr.Message)
}

func TestHandleError_KnownCheckConstraint(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23514",
		TableName:      "users",
		ConstraintName: "users_role_check",
	})

	httpErr := errs.From(err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "USER_INVALID", httpErr.Code)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "role", httpErr.Errors[0].Field)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Severity:   "ERROR",
		Code:       "23502",
		TableName:  "users",
		ColumnName: "username",
	})

	httpErr := errs.From(err)
	assert.Equal(t, errs.KindValidationFailed, httpErr.Kind)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "username", httpErr.Errors[0].Field)
	assert.Equal(t, "required", httpErr.Errors[0].Reason)
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Severity:   "ERROR",
		Code:       "23503",
		TableName:  "files",
		ColumnName: "owner_id",
	})

	httpErr := errs.From(err)
	assert.Equal(t, errs.KindValidationFailed, httpErr.Kind)
	assert.Equal(t, "The referenced Owner does not exist", httpErr.Message)
}

func TestHandleError_NoRows(t *testing.T) {
	err := HandleError(fmt.Errorf("table:users: %w", pgx.ErrNoRows))
	httpErr := errs.From(err)
	assert.Equal(t, errs.KindNotFound, httpErr.Kind)
	assert.Equal(t, "User not found", httpErr.Message)

	err = HandleError(pgx.ErrNoRows)
	assert.Equal(t, "Resource not found", errs.From(err).Message)
}

func TestHandleError_PassThroughAndFallback(t *testing.T) {
	original := errs.NewForbiddenError("nope", false)
	assert.Same(t, original, HandleError(original))

	cause := errors.New("connection refused")
	err := HandleError(cause)
	httpErr := errs.From(err)
	assert.Equal(t, errs.KindInternal, httpErr.Kind)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, httpErr.Message, "refused")
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", uniqueErr())

	assert.True(t, IsUniqueViolation(wrapped))
	assert.True(t, IsUniqueViolation(wrapped, "users_username_key"))
	assert.False(t, IsUniqueViolation(wrapped, "files_pkey"))
	assert.False(t, IsUniqueViolation(errors.New("other")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestMapCodeAndErrCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, Other, MapCode("XX000"))
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))

	converted := ConvertPgError(uniqueErr())
	assert.Equal(t, UniqueViolation, ErrCode(fmt.Errorf("wrap: %w", converted)))
	assert.Equal(t, Other, ErrCode(errors.New("x")))
	assert.ErrorIs(t, converted, converted.driverErr)
}
