// Package errors provides structured error handling for tasktrack services.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Task errors
	CodeTaskNotFound        Code = "TASK_NOT_FOUND"
	CodeTaskTitleEmpty      Code = "TASK_TITLE_EMPTY"
	CodeTaskInvalidStatus   Code = "TASK_INVALID_STATUS"
	CodeTaskInvalidPriority Code = "TASK_INVALID_PRIORITY"
	CodeTaskAssignCompleted Code = "TASK_ASSIGN_COMPLETED"

	// Authorization errors
	CodeTaskUpdateForbidden  Code = "TASK_UPDATE_FORBIDDEN"
	CodeTaskStatusRequired   Code = "TASK_STATUS_REQUIRED"
	CodeTaskRoleUnauthorized Code = "TASK_ROLE_UNAUTHORIZED"
	CodeCredentialsInvalid   Code = "CREDENTIALS_INVALID"
	CodeCredentialsExpired   Code = "CREDENTIALS_EXPIRED"
	CodeCredentialsMissing   Code = "CREDENTIALS_MISSING"

	// User errors
	CodeUserNotFound   Code = "USER_NOT_FOUND"
	CodeUserEmailEmpty Code = "USER_EMAIL_EMPTY"

	// Query errors
	CodeFilterInvalid Code = "FILTER_INVALID"
	CodePageInvalid   Code = "PAGE_INVALID"

	// Transport errors
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeTaskTitleEmpty,
		CodeTaskInvalidStatus,
		CodeTaskInvalidPriority,
		CodeUserEmailEmpty,
		CodeFilterInvalid,
		CodePageInvalid,
		CodeRequestInvalid:
		return codes.InvalidArgument

	// PermissionDenied - role or ownership violations
	case CodeTaskUpdateForbidden,
		CodeTaskStatusRequired,
		CodeTaskRoleUnauthorized:
		return codes.PermissionDenied

	// Unauthenticated - missing or unusable credentials
	case CodeCredentialsInvalid,
		CodeCredentialsExpired,
		CodeCredentialsMissing:
		return codes.Unauthenticated

	// FailedPrecondition - state doesn't allow operation
	case CodeTaskAssignCompleted:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeTaskNotFound,
		CodeUserNotFound,
		CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP response status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.FailedPrecondition, codes.AlreadyExists:
		return http.StatusConflict
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
