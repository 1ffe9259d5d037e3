// Package bridgeerr defines the error taxonomy shared by every component of
// the bridge. Each concrete type implements the BridgeError interface so
// callers can dispatch on Category() or unwrap to an underlying cause with
// errors.As / errors.Is, the same shape the rest of this ecosystem uses for
// its own request/agent error split.
package bridgeerr

import "fmt"

// Category classifies a BridgeError for callers that want to branch on kind
// without a type switch.
type Category string

const (
	CategoryIdentifier     Category = "IDENTIFIER_ERROR"
	CategoryComposer       Category = "COMPOSER_ERROR"
	CategoryWire           Category = "WIRE_ERROR"
	CategoryQueryValidation Category = "QUERY_VALIDATION"
	CategoryBackend        Category = "BACKEND_ERROR"
	CategoryCascadeBlocked Category = "CASCADE_BLOCKED"
	CategoryLifecycle      Category = "LIFECYCLE_ERROR"
	CategoryUnknownColumn  Category = "UNKNOWN_COLUMN"
)

// BridgeError is the interface every error type in this package satisfies.
type BridgeError interface {
	error
	Category() Category
	Unwrap() error
}

// IdentifierErrorKind enumerates the ways an identifier can fail validation.
type IdentifierErrorKind string

const (
	EmptyIdentifier  IdentifierErrorKind = "EmptyIdentifier"
	TooManyParts     IdentifierErrorKind = "TooManyParts"
	InvalidFirstChar IdentifierErrorKind = "InvalidFirstChar"
	InvalidChar      IdentifierErrorKind = "InvalidChar"
	TooLong          IdentifierErrorKind = "TooLong"
	ReservedWord     IdentifierErrorKind = "ReservedWord"
	SystemNamespace  IdentifierErrorKind = "SystemNamespace"
)

// IdentifierError reports why a candidate identifier was rejected.
type IdentifierError struct {
	Kind IdentifierErrorKind
	Text string
}

var _ BridgeError = (*IdentifierError)(nil)

func NewIdentifierError(kind IdentifierErrorKind, text string) *IdentifierError {
	return &IdentifierError{Kind: kind, Text: text}
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Text, e.Kind)
}

func (e *IdentifierError) Category() Category { return CategoryIdentifier }
func (e *IdentifierError) Unwrap() error      { return nil }

// ComposerError reports a structural defect in a builder invocation (empty
// value lists, empty conflict targets, empty derived update sets).
type ComposerError struct {
	Msg string
}

var _ BridgeError = (*ComposerError)(nil)

func NewComposerError(msg string) *ComposerError { return &ComposerError{Msg: msg} }

func (e *ComposerError) Error() string         { return e.Msg }
func (e *ComposerError) Category() Category    { return CategoryComposer }
func (e *ComposerError) Unwrap() error         { return nil }

// Sentinel composer error messages, returned by internal/sqlcompose's
// BuildInsert, BuildUpdate and BuildUpsert.
const (
	MsgEmptyValues          = "cannot build query: no values provided"
	MsgEmptyConflictTarget  = "cannot upsert: conflict target is empty"
	MsgEmptyUpdateColumns   = "cannot upsert: no columns to update after excluding conflict target"
)

// WireError reports a bind failure going to or coming from a backend driver
// (type mismatch, heterogeneous array element types, etc).
type WireError struct {
	Msg   string
	Cause error
}

var _ BridgeError = (*WireError)(nil)

func NewWireError(msg string, cause error) *WireError { return &WireError{Msg: msg, Cause: cause} }

func (e *WireError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *WireError) Category() Category { return CategoryWire }
func (e *WireError) Unwrap() error      { return e.Cause }

// QueryValidationError reports a denylisted operator found in a document
// filter or aggregation pipeline stage.
type QueryValidationError struct {
	Operator string
}

var _ BridgeError = (*QueryValidationError)(nil)

func NewQueryValidationError(operator string) *QueryValidationError {
	return &QueryValidationError{Operator: operator}
}

func (e *QueryValidationError) Error() string {
	return fmt.Sprintf("operator %q is not permitted in query documents", e.Operator)
}

func (e *QueryValidationError) Category() Category { return CategoryQueryValidation }
func (e *QueryValidationError) Unwrap() error      { return nil }

// BackendError wraps a driver-reported failure. Text is sanitized by the
// caller (see Sanitize) before being surfaced across a host boundary.
type BackendError struct {
	Msg   string
	Cause error
}

var _ BridgeError = (*BackendError)(nil)

func NewBackendError(msg string, cause error) *BackendError {
	return &BackendError{Msg: msg, Cause: cause}
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *BackendError) Category() Category { return CategoryBackend }
func (e *BackendError) Unwrap() error      { return e.Cause }

// Sanitize strips the cause (and therefore any connection-string or
// stack-trace detail it may carry) from a BackendError, returning only the
// short description. Pass sanitize=false to keep the cause attached.
func Sanitize(err *BackendError, sanitize bool) error {
	if !sanitize {
		return err
	}
	return &BackendError{Msg: err.Msg}
}

// CascadeBlockedError reports that a Restrict/NoAction foreign key rule
// prevented a cascading delete.
type CascadeBlockedError struct {
	SourceTable  string
	SourceColumn string
}

var _ BridgeError = (*CascadeBlockedError)(nil)

func NewCascadeBlockedError(sourceTable, sourceColumn string) *CascadeBlockedError {
	return &CascadeBlockedError{SourceTable: sourceTable, SourceColumn: sourceColumn}
}

func (e *CascadeBlockedError) Error() string {
	return fmt.Sprintf("delete blocked: %q.%q still references the target row", e.SourceTable, e.SourceColumn)
}

func (e *CascadeBlockedError) Category() Category { return CategoryCascadeBlocked }
func (e *CascadeBlockedError) Unwrap() error      { return nil }

// LifecycleError reports document-orchestrator init/close misuse
// (NotInitialized / AlreadyInitialized in spec terms).
type LifecycleError struct {
	AlreadyInitialized bool
}

var _ BridgeError = (*LifecycleError)(nil)

func NewNotInitializedError() *LifecycleError      { return &LifecycleError{AlreadyInitialized: false} }
func NewAlreadyInitializedError() *LifecycleError  { return &LifecycleError{AlreadyInitialized: true} }

func (e *LifecycleError) Error() string {
	if e.AlreadyInitialized {
		return "document orchestrator is already initialized"
	}
	return "document orchestrator is not initialized"
}

func (e *LifecycleError) Category() Category { return CategoryLifecycle }
func (e *LifecycleError) Unwrap() error      { return nil }

// UnknownColumnError reports that eager-load column discovery returned no
// columns for a table named in the plan.
type UnknownColumnError struct {
	Table string
}

var _ BridgeError = (*UnknownColumnError)(nil)

func NewUnknownColumnError(table string) *UnknownColumnError {
	return &UnknownColumnError{Table: table}
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("no columns found for table %q", e.Table)
}

func (e *UnknownColumnError) Category() Category { return CategoryUnknownColumn }
func (e *UnknownColumnError) Unwrap() error      { return nil }
