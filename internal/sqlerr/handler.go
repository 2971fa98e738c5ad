package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/profile-api/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode returns the Code of a converted *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds a machine code of the form <ENTITY>_<ACTION>,
// e.g. users + UniqueViolation => USER_ALREADY_EXISTS.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidText:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage phrases the error for clients, never for logs.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column when the constraint name reveals it.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers a "<entity>_id" column, then the singular table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns snake_case into Title Case ("image_link" -> "Image Link").
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var constraintColumnRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation reads the column out of constraint names
// shaped "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := constraintColumnRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// IsUniqueViolation reports whether err is a PostgreSQL unique violation
// (SQLSTATE 23505), optionally on a specific constraint.
func IsUniqueViolation(err error, constraint ...string) bool {
	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) || MapCode(pgerr.Code) != UniqueViolation {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	for _, name := range constraint {
		if pgerr.ConstraintName == name {
			return true
		}
	}
	return false
}

// constraintError is a hand-written translation for a named constraint in
// our schema. Field is the request field the client should fix.
type constraintError struct {
	Code    string
	Field   string
	Message string
}

// knownConstraints take precedence over the generated messages.
var knownConstraints = map[string]constraintError{
	"users_username_key":  {Code: "USER_ALREADY_EXISTS", Field: "username", Message: "User already exists"},
	"users_role_check":    {Code: "USER_INVALID", Field: "role", Message: "Role must be ADMIN or USER"},
	"files_pkey":          {Code: "FILE_ALREADY_EXISTS", Field: "id", Message: "File already exists"},
	"files_owner_id_fkey": {Code: "USER_NOT_FOUND", Field: "owner_id", Message: "The owner does not exist"},
}

func fromKnownConstraint(sqlErr *Error) (error, bool) {
	known, ok := knownConstraints[sqlErr.ConstraintName]
	if !ok {
		return nil, false
	}

	code := known.Code
	if sqlErr.Code == UniqueViolation {
		return errs.NewConflictError(known.Message, &code), true
	}
	return errs.NewBadRequestError(known.Message, true, &code, []errs.FieldError{
		{Field: known.Field, Reason: string(sqlErr.Code), Error: known.Message},
	}), true
}

// HandleError converts a low-level database error into an application-level error.
//
//   - *errs.HTTPError: returned unchanged
//   - unique violation: 409 Conflict
//   - foreign key, not-null, check, invalid text: 400 ValidationFailed
//   - no rows: 404 NotFound
//   - anything else: 500, with the driver error kept as the cause for logs
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		if converted, ok := fromKnownConstraint(sqlErr); ok {
			return converted
		}

		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case UniqueViolation:
			columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName)
			if columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			return errs.NewConflictError(userMessage, &errorCode)

		case ForeignKeyViolation, CheckViolation:
			field := strings.ToLower(sqlErr.ColumnName)
			if field == "" {
				field = "body"
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, []errs.FieldError{
				{Field: field, Reason: string(sqlErr.Code), Error: userMessage},
			})

		case NotNullViolation:
			field := strings.ToLower(sqlErr.ColumnName)
			return errs.NewBadRequestError(userMessage, true, &errorCode, []errs.FieldError{
				{Field: field, Reason: "required", Error: field + " is required"},
			})

		case InvalidText:
			return errs.NewBadRequestError("One or more values have an invalid format", true, &errorCode, nil)

		default:
			return errs.NewInternalError(sqlErr)
		}
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		// Repositories may tag the error with "table:<name>:" to name the entity.
		errMsg := err.Error()
		tablePrefix := "table:"
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			entityName := getEntityName(table, "")
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalError(err)
}
