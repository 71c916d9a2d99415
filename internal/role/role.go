package role

import "errors"

var ErrDenied = errors.New("permission denied")

type Privilege uint8

const (
	Guest Privilege = 0  // Non logged in user
	User  Privilege = 10 // Normal logged-in user
	Admin Privilege = 50 // Dashboard admin, may manage servers, bans, mutes and warns
	Root  Privilege = 100 // Unrestricted, may manage admins and groups
)

func (p Privilege) String() string {
	switch p {
	case Guest:
		return "guest"
	case User:
		return "user"
	case Admin:
		return "admin"
	case Root:
		return "root"
	default:
		return "unknown"
	}
}

// Parse maps a stored role string onto a privilege level. Unknown values map to User.
func Parse(value string) Privilege {
	switch value {
	case "root":
		return Root
	case "admin":
		return Admin
	case "guest":
		return Guest
	default:
		return User
	}
}
