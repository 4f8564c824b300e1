package domain

// User represents a user record
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateUserRequest is the body accepted by POST /api/users.
// Keys match exactly; absent, null or non-string fields fall back to defaults.
type CreateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// UnmarshalJSON decodes a JSON object, matching keys case-sensitively
func (r *CreateUserRequest) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = CreateUserRequest{
		Name:  stringField(fields, "name"),
		Email: stringField(fields, "email"),
		Role:  stringField(fields, "role"),
	}
	return nil
}

// ToUser builds a user without an id, applying defaults
func (r CreateUserRequest) ToUser() User {
	return User{
		Name:  stringOr(r.Name, "Unknown"),
		Email: stringOr(r.Email, ""),
		Role:  stringOr(r.Role, "user"),
	}
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
