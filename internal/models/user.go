package models

import "time"

// UserRole określa rolę użytkownika w systemie
type UserRole string

const (
	RoleReader UserRole = "reader" // Czytelnik
	RoleAdmin  UserRole = "admin"  // Administrator - zarządza katalogiem i wypożyczeniami
)

// User reprezentuje konto użytkownika, do którego należą członkowie biblioteki
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin sprawdza czy użytkownik jest administratorem
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary zwraca skrócony widok użytkownika
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
