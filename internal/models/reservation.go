package models

import "time"

// Reservation reprezentuje rezerwację książki przez członka biblioteki
type Reservation struct {
	ID               string    `json:"id" db:"id"`
	ReservationDate  Date      `json:"reservation_date" db:"reservation_date"`
	NotificationSent bool      `json:"notification_sent" db:"notification_sent"`
	MemberID         string    `json:"member_id" db:"member_id"`
	BookID           string    `json:"book_id" db:"book_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
