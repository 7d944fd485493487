package profile

import (
	"errors"
	"strings"
)

// Profile is the self-service view of the signed-in account.
type Profile struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
	Allergy    string  `json:"allergy"`
}

// allowedAllergies is the fixed choice list offered at event signup.
var allowedAllergies = map[string]bool{
	"":           true,
	"none":       true,
	"gluten":     true,
	"lactose":    true,
	"nuts":       true,
	"shellfish":  true,
	"vegetarian": true,
	"vegan":      true,
}

type UpdateProfileDTO struct {
	Email   *string `json:"email"`
	Allergy *string `json:"allergy"`
}

func (dto UpdateProfileDTO) Validate() error {
	if dto.Email != nil && strings.TrimSpace(*dto.Email) == "" {
		return errors.New("email cannot be empty")
	}
	if dto.Allergy != nil && !allowedAllergies[strings.ToLower(*dto.Allergy)] {
		return errors.New("unrecognized allergy option")
	}
	return nil
}
