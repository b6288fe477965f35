package model

// User is an optional registry record. Thread ownership is not checked
// against it.
type User struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CreateUserRequest is the body of POST /api/user.
type CreateUserRequest struct {
	UserID    string `json:"userId" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"required"`
}
