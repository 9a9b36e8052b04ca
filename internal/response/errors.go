package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrSchoolMismatch   ErrCode = "SCHOOL_MISMATCH"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Promotion-specific ────────────────────────────────────────────
	ErrAlreadyPromoted   ErrCode = "ALREADY_PROMOTED"
	ErrSameYear          ErrCode = "SAME_YEAR"
	ErrDataUnavailable   ErrCode = "DATA_UNAVAILABLE"
	ErrPromotionInFlight ErrCode = "PROMOTION_IN_FLIGHT"
	ErrUndoWindowExpired ErrCode = "UNDO_WINDOW_EXPIRED"
	ErrNothingToUndo     ErrCode = "NOTHING_TO_UNDO"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrSchoolMismatch:
		return "This resource belongs to another school."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "The request references students or classes outside this promotion's scope."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Promotion-specific ────────────────────────────────────────────
	case ErrAlreadyPromoted:
		return "This academic year has already been promoted."
	case ErrSameYear:
		return "Source and target academic year must differ."
	case ErrDataUnavailable:
		return "Student enrollment data is currently unavailable. No preview was produced."
	case ErrPromotionInFlight:
		return "Another promotion operation for this academic year is in progress."
	case ErrUndoWindowExpired:
		return "The undo window for this promotion has expired. The batch can no longer be reversed."
	case ErrNothingToUndo:
		return "No promotion batch exists for this academic year pair."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
