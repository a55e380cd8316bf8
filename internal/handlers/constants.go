package handlers

// Common error message constants shared across handlers
const (
	ErrMsgUserNotFound       = "User not found"
	ErrMsgQuestionNotFound   = "Question not found"
	ErrMsgProjectNotFound    = "Project not found"
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgSelfDemotion       = "Admins cannot demote themselves."
	ErrMsgSelfDeletion       = "Admins cannot delete their own account."
)
