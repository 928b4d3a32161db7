package msgs

const (
	MsgOperationSuccessful     = "operation successful"
	MsgOperationFailed         = "operation failed"
	MsgUserCreatedSuccessfully = "user created successfully"
	MsgYouMustLoginFirst       = "you must login first"
	MsgMessageSent             = "message sent"
	MsgMessagesMarkedAsRead    = "messages marked as read"
)
