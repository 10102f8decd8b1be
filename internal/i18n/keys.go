// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserSuspended      = "user.suspended"
	KeyUserProfileUpdated = "user.profile_updated"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Works
	KeyWorkUploaded = "work.uploaded"
	KeyWorkNotFound = "work.not_found"

	// Clearance requests
	KeyClearanceCreated   = "clearance.created"
	KeyClearanceResponded = "clearance.responded"
	KeyClearanceCountered = "clearance.countered"
	KeyClearanceFinalized = "clearance.finalized"
	KeyClearanceNotFound  = "clearance.not_found"
	KeyClearanceConflict  = "clearance.conflict"

	// Payments
	KeyPaymentConfirmed = "payment.confirmed"
	KeyPaymentFailed    = "payment.failed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Notifications
	KeyNotificationSent   = "notification.sent"
	KeyNotificationFailed = "notification.failed"
)
