package sqlerr

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Code is the category of a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	ExclusionViolation  Code = "exclusion_violation"
	InvalidText         Code = "invalid_text_representation"
	StringTooLong       Code = "string_data_right_truncation"
	SerializationFail   Code = "serialization_failure"
	DeadlockDetected    Code = "deadlock_detected"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
var sqlStateCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"22P02": InvalidText,
	"22001": StringTooLong,
	"40001": SerializationFail,
	"40P01": DeadlockDetected,
}

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlState string) Code {
	if code, ok := sqlStateCodes[sqlState]; ok {
		return code
	}
	return Other
}

// Severity is the severity reported by Postgres.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity maps the Postgres severity string, defaulting to SeverityError.
func MapSeverity(severity string) Severity {
	switch s := Severity(severity); s {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return s
	default:
		return SeverityError
	}
}

// Error is a classified Postgres error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr *pgconn.PgError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	if e.driverErr == nil {
		return nil
	}
	return e.driverErr
}
