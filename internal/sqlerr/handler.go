package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/go-modelstate/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tablePrefix marks the table name inside errors wrapped by repositories,
// e.g. fmt.Errorf("table:accounts: %w", pgx.ErrNoRows).
const tablePrefix = "table:"

var constraintColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// constraintRule describes how one class of constraint violation reaches clients.
type constraintRule struct {
	// action completes the error code, e.g. ACCOUNT_ALREADY_EXISTS.
	action string
	// field is the per-column message. Empty for violations not tied to a column.
	field string
	// override marks messages safe to show as is.
	override bool
}

var constraintRules = map[Code]constraintRule{
	ForeignKeyViolation: {action: "NOT_FOUND"},
	UniqueViolation:     {action: "ALREADY_EXISTS", field: "is already taken", override: true},
	NotNullViolation:    {action: "REQUIRED", field: "is required", override: true},
	CheckViolation:      {action: "INVALID", override: true},
}

// ConvertPgError classifies a raw Postgres error.
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

// HandleError converts a database error into an *errs.HTTPError.
//
// Unique and not-null violations are reported the way request validation
// reports failures: one message, e.g. "email is already taken", under the
// column and under "".
// pgx.ErrNoRows and sql.ErrNoRows become 404s, anything unknown a 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromConstraint(ConvertPgError(pgErr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return notFound(err)
	}

	return errs.NewInternalServerError()
}

func fromConstraint(sqlErr *Error) error {
	rule, ok := constraintRules[sqlErr.Code]
	if !ok {
		return errs.NewInternalServerError()
	}

	code := singular(strings.ToUpper(orDefault(sqlErr.TableName, "record"))) + "_" + rule.action

	column := sqlErr.ColumnName
	if sqlErr.Code == UniqueViolation {
		column = columnFromConstraint(sqlErr.ConstraintName)
	}
	message := describe(sqlErr, column)

	if rule.field == "" || (sqlErr.Code == UniqueViolation && column == "") {
		return errs.NewBadRequestError(message, rule.override, &code, nil, nil)
	}

	modelState := errs.NewModelState()
	if column = strings.ToLower(column); column != "" {
		fieldMessage := column + " " + rule.field
		modelState.AddError(column, fieldMessage)
		modelState.AddError("", fieldMessage)
	} else {
		modelState.AddError("", message)
	}

	return errs.NewBadRequestError(message, rule.override, &code, modelState.FieldErrors(), nil)
}

func describe(sqlErr *Error, column string) string {
	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName(sqlErr.TableName, sqlErr.ColumnName))
	case UniqueViolation:
		identifier := "identifier"
		if column != "" {
			identifier = title(column)
		}
		entity := entityName(sqlErr.TableName, sqlErr.ColumnName)
		return fmt.Sprintf("%s %s with this %s already exists", article(entity), entity, identifier)
	case NotNullViolation:
		return fmt.Sprintf("The %s is required", orDefault(title(column), "field"))
	case CheckViolation:
		if column != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", title(column))
		}
		return "One or more values do not meet required conditions"
	default:
		return "An error occurred while processing your request"
	}
}

func notFound(err error) error {
	_, rest, ok := strings.Cut(err.Error(), tablePrefix)
	if !ok {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	table, _, _ := strings.Cut(rest, ":")
	return errs.NewNotFoundError(entityName(table, "")+" not found", true, nil)
}

// entityName prefers a "<entity>_id" column, then the singular table name.
func entityName(table, column string) string {
	if entity, ok := strings.CutSuffix(strings.ToLower(column), "_id"); ok && entity != "" {
		return title(entity)
	}
	if table != "" {
		return title(singular(table))
	}
	return "record"
}

// columnFromConstraint reads the column from constraint names shaped like
// unique_<table>_<column> or <table>_<column>_key.
func columnFromConstraint(constraint string) string {
	if strings.HasPrefix(constraint, "unique_") {
		if parts := strings.Split(constraint, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := constraintColumn.FindStringSubmatch(constraint); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// article picks "A" or "An" by the first letter of word.
func article(word string) string {
	if word != "" && strings.ContainsRune("AEIOUaeiou", rune(word[0])) {
		return "An"
	}
	return "A"
}

func singular(name string) string {
	if len(name) > 1 && strings.HasSuffix(strings.ToLower(name), "s") {
		return name[:len(name)-1]
	}
	return name
}

// title turns "display_name" into "Display Name".
func title(text string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
