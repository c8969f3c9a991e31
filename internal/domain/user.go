package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        string `db:"id"`
	Email     string `db:"email"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Profile is the public shape served by GET /api/v1/user/{email}.
type Profile struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u User) Profile() Profile {
	return Profile{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
