package models

import "time"

// Member reprezentuje członka biblioteki
type Member struct {
	ID               string    `json:"id" db:"id"`
	FullName         string    `json:"full_name" db:"full_name"`
	Email            string    `json:"email" db:"email"`
	MembershipDate   Date      `json:"membership_date" db:"membership_date"`
	MembershipStatus string    `json:"membership_status" db:"membership_status"`
	UserID           string    `json:"user_id" db:"user_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Summary zwraca skrócony widok członka osadzany w wypożyczeniach i rezerwacjach
func (m *Member) Summary() MemberSummary {
	return MemberSummary{ID: m.ID, FullName: m.FullName, Email: m.Email}
}
