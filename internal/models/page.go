package models

import "math"

const (
	// DefaultPerPage to domyślny rozmiar strony list
	DefaultPerPage = 5
	// GenresPerPage to domyślny rozmiar strony listy gatunków
	GenresPerPage = 3
	// MaxPerPage ogranicza rozmiar strony
	MaxPerPage = 100
	// MaxPage to największy numer strony, dla którego Offset się nie przepełnia
	MaxPage = math.MaxInt / MaxPerPage
)

// PageRequest opisuje żądaną stronę wyników
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize uzupełnia wartości domyślne
func (p PageRequest) Normalize() PageRequest {
	return p.NormalizeWith(DefaultPerPage)
}

// NormalizeWith działa jak Normalize, ale z własnym domyślnym rozmiarem strony
func (p PageRequest) NormalizeWith(perPage int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = perPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset zwraca liczbę pomijanych rekordów
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Window zwraca zakres [start, end) strony dla kolekcji o podanej długości
func (p PageRequest) Window(total int) (int, int) {
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return start, end
}

// Page to strona wyników zwracana przez API
type Page[T any] struct {
	CurrentPage int `json:"current_page"`
	Data        []T `json:"data"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// NewPage buduje stronę z danymi i całkowitą liczbą rekordów
func NewPage[T any](req PageRequest, data []T, total int) Page[T] {
	req = req.Normalize()
	lastPage := (total + req.PerPage - 1) / req.PerPage
	if lastPage < 1 {
		lastPage = 1
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		CurrentPage: req.Page,
		Data:        data,
		LastPage:    lastPage,
		PerPage:     req.PerPage,
		Total:       total,
	}
}
