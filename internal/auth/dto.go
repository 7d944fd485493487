package auth

import "errors"

// LoginDTO accepts either a username or an email, matching the old portal's
// login form.
type LoginDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (dto LoginDTO) Validate() error {
	if dto.Password == "" {
		return errors.New("password is required")
	}
	if dto.Username == "" && dto.Email == "" {
		return errors.New("username or email is required")
	}
	return nil
}

func (dto LoginDTO) Login() string {
	if dto.Username != "" {
		return dto.Username
	}
	return dto.Email
}

type RegisterDTO struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Type       string  `json:"type"`
	Department *string `json:"department"`
}

func (dto RegisterDTO) Validate() error {
	if dto.Username == "" || dto.Email == "" || dto.Password == "" {
		return errors.New("username, email and password are required")
	}
	if dto.Type != "" && !AllowedTypes[dto.Type] {
		return errors.New("invalid role")
	}
	return nil
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (dto ChangePasswordDTO) Validate() error {
	if len(dto.NewPassword) < 8 {
		return errors.New("password too short")
	}
	return nil
}

type RegisterEventDTO struct {
	EventID string `json:"event_id"`
}

func (dto RegisterEventDTO) Validate() error {
	if dto.EventID == "" {
		return errors.New("event_id is required")
	}
	return nil
}
