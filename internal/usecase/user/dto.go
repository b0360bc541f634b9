package user

// AddUserRequest represents the request payload for appending a user.
// Only presence is checked; the roster does not validate email format.
type AddUserRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// AddUserResponse carries the record as stored, including its assigned ID.
type AddUserResponse struct {
	User User
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// ListUsersRequest represents the request payload for listing users.
// An empty Query returns every user.
type ListUsersRequest struct {
	Query string
}

// ListUsersResponse holds users in insertion order.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
