package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout to format daty używany w API i bazie danych
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date reprezentuje datę kalendarzową bez godziny (północ UTC)
type Date struct {
	time.Time
}

// NewDate tworzy datę z roku, miesiąca i dnia
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf obcina czas do daty kalendarzowej w strefie, w której został podany
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today zwraca dzisiejszą datę
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parsuje datę w formacie 2006-01-02 lub RFC3339
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("nieprawidłowy format daty %q", s)
	}
	return DateOf(t), nil
}

// DaysUntil zwraca liczbę pełnych dni od d do other (ujemną, gdy other jest wcześniej)
func (d Date) DaysUntil(other Date) int {
	return int((other.Unix() - d.Unix()) / secondsPerDay)
}

// Before sprawdza czy data jest wcześniejsza niż other
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After sprawdza czy data jest późniejsza niż other
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal sprawdza czy obie daty wskazują ten sam dzień
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// AddDays zwraca datę przesuniętą o podaną liczbę dni
func (d Date) AddDays(days int) Date {
	return Date{d.Time.AddDate(0, 0, days)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Ptr zwraca wskaźnik na kopię daty
func (d Date) Ptr() *Date {
	return &d
}

// MarshalJSON zapisuje datę jako "2006-01-02"
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON odczytuje datę z "2006-01-02" albo RFC3339
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implementuje sql.Scanner
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("nie można odczytać daty z typu %T", value)
	}
	return nil
}

// Value implementuje driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}
