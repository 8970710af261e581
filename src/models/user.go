package models

import "time"

type User struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  []byte     `json:"-"`
	ResetToken    *string    `json:"-"`
	ResetTokenExp *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
