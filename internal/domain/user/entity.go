package user

// User represents a user record held by the roster.
type User struct {
	ID    int64  // ID is assigned by the store on append and never reused
	Name  string // Name is the display name of the user
	Email string // Email is the contact address of the user
}
