package errs

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidRequestBody  = Error("invalid request body")
	ErrUserAlreadyExists   = Error("user already exists")
	ErrUserNotFound        = Error("user not found")
	ErrSenderNotFound      = Error("sender not found")
	ErrRecipientNotFound   = Error("recipient not found")
	ErrSelfMessage         = Error("cannot send a message to yourself")
	ErrEmptyMessageBody    = Error("message body is empty")
	ErrWrongPassword       = Error("wrong password")
	ErrInvalidToken        = Error("invalid token")
	ErrInvalidEmail        = Error("invalid email")
	ErrInvalidPassword     = Error("invalid password")
	ErrInvalidRequest      = Error("invalid request")
	ErrInvalidParams       = Error("invalid params")
	ErrInvalidPageOrSize   = Error("invalid page or size")
	ErrInvalidRecipientId  = Error("invalid recipient id")
	ErrInvalidSenderId     = Error("invalid sender id")
	ErrUnauthorized        = Error("unauthorized")
	ErrFirstName           = Error("first name is empty or too short")
	ErrLastName            = Error("last name is empty or too short")
	ErrNotConnected        = Error("client is not connected")
)
