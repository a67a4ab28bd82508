package mongo

// Collection names.
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// MsgDuplicateEmail is the client message for a signup with a taken email.
const MsgDuplicateEmail = "User with email already exists"
