package response

// Message pairs a client-facing text with a stable application error code.
// The code is independent of the HTTP status and lets clients branch on the
// exact failure cause.
type Message struct {
	Code int    `json:"error_code"`
	Text string `json:"message"`
}

var (
	ValidationFailed        = Message{0, "Validation failed"}
	ErrorOccurred           = Message{4, "An error occurred"}
	DuplicateEmail          = Message{5, "This email already exist, please try a different email"}
	DuplicatePhone          = Message{6, "This phone number already exist, please try a different phone number"}
	UnableToSave            = Message{7, "Unable to save"}
	UnableToCompleteRequest = Message{8, "Unable to complete request"}
	InvalidLogin            = Message{10, "Invalid email or password"}
	AccountBlocked          = Message{11, "Account may have been blocked or suspended. Please contact administrator"}
	InvalidToken            = Message{12, "Unable to authenticate request. Please login again"}
	ActivationRequired      = Message{14, "Account activation required"}
	AlreadyActivated        = Message{16, "Account already activated"}
	SessionExpired          = Message{17, "Session expired. Please login again"}
	ContactAdmin            = Message{18, "An error occurred, please contact admin"}
	UnableToLogin           = Message{19, "Unable to login"}
	InvalidSessionUser      = Message{20, "Unable to validate the user in this session. Please login again"}
	PasswordMismatch        = Message{21, "Passwords do not match"}
	PasswordUpdateRequired  = Message{22, "Password update is required for this account"}
	InvalidPermission       = Message{23, "Sorry you do not have permission to perform this action"}
	InvalidEmail            = Message{25, "Invalid email address"}
	AccountInReview         = Message{30, "This account is still in review and have not been approved yet"}
	InvalidOTP              = Message{33, "Invalid or expired otp"}
	DuplicateUserRole       = Message{34, "This user already has this privilege"}
)

func RequiredField(field string) Message {
	return Message{2, field + " is required"}
}

func ResourceNotFound(resource string) Message {
	return Message{3, resource + " not found"}
}

func InvalidRequest(reason string) Message {
	return Message{9, "Invalid request. " + reason}
}

func ActionNotPermitted(action string) Message {
	return Message{13, action + " is not permitted"}
}

func DuplicateValue(value string) Message {
	return Message{15, "a duplicate value for " + value + " already exists"}
}

func InvalidValue(field string) Message {
	return Message{24, "Invalid value provided for " + field}
}

func BadRequest(message string) Message {
	return Message{31, message}
}
