package errors

// Stable error codes returned in errorData.code so clients can branch without parsing messages.
const (
	// Authentication
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthTokenMissing       = "AUTH_TOKEN_MISSING"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthEmailNotConfirmed  = "AUTH_EMAIL_NOT_CONFIRMED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_ALREADY_EXISTS"
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"

	// Authorization
	AuthzForbidden        = "AUTHZ_FORBIDDEN"
	AuthzInsufficientRole = "AUTHZ_INSUFFICIENT_ROLE"
	AuthzNotOwner         = "AUTHZ_NOT_OWNER"

	// Validation
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID       = "VALIDATION_INVALID_ID"
	ValidationInvalidCategory = "VALIDATION_INVALID_CATEGORY"
	ValidationInvalidSlot     = "VALIDATION_INVALID_SLOT"
	ValidationInvalidRating   = "VALIDATION_INVALID_RATING"
	ValidationInvalidStatus   = "VALIDATION_INVALID_STATUS"
	ValidationSamePassword    = "VALIDATION_SAME_PASSWORD"
	ValidationInvalidFile     = "VALIDATION_INVALID_FILE"

	// Resources
	ResourceNotFound     = "RESOURCE_NOT_FOUND"
	UserNotFound         = "USER_NOT_FOUND"
	RestaurantNotFound   = "RESTAURANT_NOT_FOUND"
	TableNotFound        = "TABLE_NOT_FOUND"
	MealNotFound         = "MEAL_NOT_FOUND"
	VipRoomNotFound      = "VIP_ROOM_NOT_FOUND"
	ReservationNotFound  = "RESERVATION_NOT_FOUND"
	ReviewNotFound       = "REVIEW_NOT_FOUND"
	ResourceAlreadyExist = "RESOURCE_ALREADY_EXISTS"

	// Business rules
	RestaurantOnePerOwner        = "RESTAURANT_ONE_PER_OWNER"
	TableNumberTaken             = "TABLE_NUMBER_TAKEN"
	TableHasReservations         = "TABLE_HAS_RESERVATIONS"
	MealHasReservations          = "MEAL_HAS_RESERVATIONS"
	ReservationSlotTaken         = "RESERVATION_SLOT_TAKEN"
	ReservationForeignResource   = "RESERVATION_FOREIGN_RESOURCE"
	ReservationNotModifiable     = "RESERVATION_NOT_MODIFIABLE"
	ReservationInvalidTransition = "RESERVATION_INVALID_TRANSITION"
	ReviewAlreadyExists          = "REVIEW_ALREADY_EXISTS"
	ReviewReservationIncomplete  = "REVIEW_RESERVATION_INCOMPLETE"

	// Internal
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
)
