package landing

import "github.com/campuspub/publication-portal/internal/auth"

// NavbarVariant selects which navigation bar a page renders.
type NavbarVariant string

const (
	NavbarPublic  NavbarVariant = "public"
	NavbarStudent NavbarVariant = "student"
	NavbarStaff   NavbarVariant = "staff"
	NavbarAdmin   NavbarVariant = "admin"
)

// NavbarFor is a pure chooser from role to navbar variant.
func NavbarFor(role auth.Role) NavbarVariant {
	switch role {
	case auth.RoleStudent:
		return NavbarStudent
	case auth.RoleStaff:
		return NavbarStaff
	case auth.RoleAdmin:
		return NavbarAdmin
	default:
		return NavbarPublic
	}
}
