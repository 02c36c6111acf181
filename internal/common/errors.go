// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorValidation matches every *ValidationError.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError is a user-facing error that aborts the triggering
// operation. Code is stable and safe to expose to clients.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrorValidation or a ValidationError with the
// same code.
func (e *ValidationError) Is(target error) bool {
	if target == ErrorValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidFolderName = &ValidationError{
		Code: "invalid_name",
		Message: "Invalid folder name:\n(1) folder name is empty (OR)\n(2) '.' in folder name (OR)\n" +
			"(3) folder name begins with '/' (OR)\n(4) Folder name is " + PrivateNamespace,
	}
	ErrInvalidFileName = &ValidationError{
		Code:    "invalid_file_name",
		Message: "Invalid file name:\n(1) file name is empty (OR)\n(2) '/' in file name (OR)\n(3) '..' in file name",
	}
	ErrInvalidBackendType = &ValidationError{
		Code:    "invalid_type",
		Message: "Unknown folder type",
	}
	ErrFolderPrivacyLocked = &ValidationError{
		Code:    "is_private_locked",
		Message: "Privacy of a folder cannot change once it contains files",
	}
	ErrFolderNameLocked = &ValidationError{
		Code:    "name_locked",
		Message: "A folder cannot be renamed once it contains files",
	}
	ErrInvalidUploadFormTTL = &ValidationError{
		Code:    "invalid_upload_form_ttl",
		Message: "Upload form TTL must be a positive number of seconds",
	}
	ErrNotS3Bucket = &ValidationError{
		Code:    "not_s3_bucket",
		Message: "This file's folder is not an S3 bucket",
	}
	ErrFolderNotForLargeUploads = &ValidationError{
		Code:    "folder_not_for_large_uploads",
		Message: "This file's folder does not allow large file uploads",
	}
)

// FileEmptyOnS3 is the warning shown when a file's backing object is absent.
const FileEmptyOnS3 = "The file's contents are empty on S3"
