package domain

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleStaff    UserRole = "STAFF"
	UserRoleCustomer UserRole = "CUSTOMER"
)

type User struct {
	ID           int32    `json:"id" db:"id"`
	Email        string   `json:"email" db:"email"`
	PhoneNumber  string   `json:"phone_number" db:"phone_number"`
	PasswordHash string   `json:"-" db:"password_hash"`
	Name         string   `json:"name" db:"name"`
	Role         UserRole `json:"role" db:"role"`
	CreatedOn    string   `json:"created_on" db:"created_on"`
	UpdatedOn    string   `json:"updated_on" db:"updated_on"`
}

// IsStaff reports whether the user may operate the admin side of the booking desk.
func (u *User) IsStaff() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleStaff
}
