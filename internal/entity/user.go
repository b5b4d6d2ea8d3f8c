package entity

import "time"

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"` // User, Admin
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
