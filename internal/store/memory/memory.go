// Package memory to backend danych trzymający wszystko w pamięci procesu.
// Używany w testach oraz gdy nie skonfigurowano bazy danych.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// collection przechowuje rekordy w kolejności dodania
type collection[T any] struct {
	items map[string]T
	ids   []string
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.items[id] = v
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) remove(id string) {
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
}

func (c *collection[T]) all() []T {
	out := make([]T, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.items[id])
	}
	return out
}

// Store to implementacja store.Store w pamięci
type Store struct {
	mu           sync.RWMutex
	genres       *collection[models.Genre]
	users        *collection[models.User]
	members      *collection[models.Member]
	books        *collection[models.Book]
	loans        *collection[models.Loan]
	reservations *collection[models.Reservation]
	now          func() time.Time
}

var _ store.Store = (*Store)(nil)

// New tworzy pusty magazyn
func New() *Store {
	return &Store{
		genres:       newCollection[models.Genre](),
		users:        newCollection[models.User](),
		members:      newCollection[models.Member](),
		books:        newCollection[models.Book](),
		loans:        newCollection[models.Loan](),
		reservations: newCollection[models.Reservation](),
		now:          time.Now,
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// Exists sprawdza czy rekord istnieje
func (s *Store) Exists(_ context.Context, entity store.Entity, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ok bool
	switch entity {
	case store.EntityGenre:
		_, ok = s.genres.get(id)
	case store.EntityUser:
		_, ok = s.users.get(id)
	case store.EntityMember:
		_, ok = s.members.get(id)
	case store.EntityBook:
		_, ok = s.books.get(id)
	case store.EntityLoan:
		_, ok = s.loans.get(id)
	case store.EntityReservation:
		_, ok = s.reservations.get(id)
	default:
		return false, fmt.Errorf("nieznana kolekcja: %s", entity)
	}
	return ok, nil
}

// --- gatunki ---

func (s *Store) CreateGenre(_ context.Context, genre *models.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.genres.items {
		if strings.EqualFold(g.Name, genre.Name) {
			return store.ErrDuplicate
		}
	}

	now := s.now()
	genre.ID = newID(genre.ID)
	genre.CreatedAt = now
	genre.UpdatedAt = now
	s.genres.put(genre.ID, *genre)
	return nil
}

func (s *Store) GetGenre(_ context.Context, id string) (*models.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.genres.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (s *Store) GetGenreByName(_ context.Context, name string) (*models.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.genres.all() {
		if strings.EqualFold(g.Name, name) {
			return &g, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateGenre(_ context.Context, genre *models.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.genres.get(genre.ID)
	if !ok {
		return store.ErrNotFound
	}
	for id, g := range s.genres.items {
		if id != genre.ID && strings.EqualFold(g.Name, genre.Name) {
			return store.ErrDuplicate
		}
	}

	genre.CreatedAt = existing.CreatedAt
	genre.UpdatedAt = s.now()
	s.genres.put(genre.ID, *genre)
	return nil
}

func (s *Store) DeleteGenre(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.genres.get(id); !ok {
		return store.ErrNotFound
	}
	for _, b := range s.books.items {
		if b.GenreID == id {
			return store.ErrReferenced
		}
	}
	s.genres.remove(id)
	return nil
}

func (s *Store) ListGenres(_ context.Context, page models.PageRequest) ([]*models.Genre, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return paginate(s.genres.all(), page)
}

// --- użytkownicy ---

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users.items {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrDuplicate
		}
	}

	now := s.now()
	user.ID = newID(user.ID)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleReader
	}
	s.users.put(user.ID, *user)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users.items {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// --- członkowie ---

func (s *Store) CreateMember(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memberEmailTaken(member.Email, "") {
		return store.ErrDuplicate
	}

	now := s.now()
	member.ID = newID(member.ID)
	member.CreatedAt = now
	member.UpdatedAt = now
	s.members.put(member.ID, *member)
	return nil
}

func (s *Store) memberEmailTaken(email, exceptID string) bool {
	for id, m := range s.members.items {
		if id != exceptID && strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) GetMember(_ context.Context, id string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) GetMemberByEmail(_ context.Context, email string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members.all() {
		if strings.EqualFold(m.Email, email) {
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateMember(_ context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.members.get(member.ID)
	if !ok {
		return store.ErrNotFound
	}
	if s.memberEmailTaken(member.Email, member.ID) {
		return store.ErrDuplicate
	}

	member.CreatedAt = existing.CreatedAt
	member.UpdatedAt = s.now()
	s.members.put(member.ID, *member)
	return nil
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members.get(id); !ok {
		return store.ErrNotFound
	}
	for _, l := range s.loans.all() {
		if l.MemberID == id {
			s.loans.remove(l.ID)
		}
	}
	for _, r := range s.reservations.all() {
		if r.MemberID == id {
			s.reservations.remove(r.ID)
		}
	}
	s.members.remove(id)
	return nil
}

func (s *Store) ListMembers(_ context.Context, page models.PageRequest) ([]*models.Member, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return paginate(s.members.all(), page)
}

// --- książki ---

func (s *Store) CreateBook(_ context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isbnTaken(book.ISBN, "") {
		return store.ErrDuplicate
	}

	now := s.now()
	book.ID = newID(book.ID)
	book.CreatedAt = now
	book.UpdatedAt = now
	s.books.put(book.ID, *book)
	return nil
}

func (s *Store) isbnTaken(isbn, exceptID string) bool {
	for id, b := range s.books.items {
		if id != exceptID && b.ISBN == isbn {
			return true
		}
	}
	return false
}

func (s *Store) GetBook(_ context.Context, id string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *Store) GetBookByISBN(_ context.Context, isbn string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books.all() {
		if b.ISBN == isbn {
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateBook(_ context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.books.get(book.ID)
	if !ok {
		return store.ErrNotFound
	}
	if s.isbnTaken(book.ISBN, book.ID) {
		return store.ErrDuplicate
	}

	book.CreatedAt = existing.CreatedAt
	book.UpdatedAt = s.now()
	s.books.put(book.ID, *book)
	return nil
}

func (s *Store) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books.get(id); !ok {
		return store.ErrNotFound
	}
	for _, l := range s.loans.all() {
		if l.BookID == id {
			s.loans.remove(l.ID)
		}
	}
	for _, r := range s.reservations.all() {
		if r.BookID == id {
			s.reservations.remove(r.ID)
		}
	}
	s.books.remove(id)
	return nil
}

// ListBooks filtruje po stronie aplikacji, tak jak wyszukiwanie w Firestore
func (s *Store) ListBooks(_ context.Context, filter store.BookFilter) ([]*models.Book, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Book
	for _, b := range s.books.all() {
		if filter.GenreID != "" && b.GenreID != filter.GenreID {
			continue
		}
		if search != "" && !s.bookMatches(b, search) {
			continue
		}
		matched = append(matched, b)
	}
	return paginate(matched, filter.PageRequest)
}

func (s *Store) bookMatches(b models.Book, search string) bool {
	if strings.Contains(strings.ToLower(b.Title), search) ||
		strings.Contains(strings.ToLower(b.Author), search) {
		return true
	}
	if g, ok := s.genres.get(b.GenreID); ok {
		return strings.Contains(strings.ToLower(g.Name), search)
	}
	return false
}

// --- wypożyczenia ---

func (s *Store) CreateLoan(_ context.Context, loan *models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members.get(loan.MemberID); !ok {
		return fmt.Errorf("członek %s: %w", loan.MemberID, store.ErrNotFound)
	}
	if _, ok := s.books.get(loan.BookID); !ok {
		return fmt.Errorf("książka %s: %w", loan.BookID, store.ErrNotFound)
	}

	now := s.now()
	loan.ID = newID(loan.ID)
	loan.CreatedAt = now
	loan.UpdatedAt = now
	s.loans.put(loan.ID, *loan)
	return nil
}

func (s *Store) GetLoan(_ context.Context, id string) (*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &l, nil
}

func (s *Store) ListLoans(_ context.Context) ([]*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pointers(s.loans.all()), nil
}

// UpdateLoan trzyma blokadę zapisu przez cały odczyt-modyfikację-zapis
func (s *Store) UpdateLoan(_ context.Context, id string, fn store.LoanMutator) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loans.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := fn(&l); err != nil {
		return nil, err
	}
	l.ID = id
	l.UpdatedAt = s.now()
	s.loans.put(id, l)
	return &l, nil
}

func (s *Store) DeleteLoan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans.get(id); !ok {
		return store.ErrNotFound
	}
	s.loans.remove(id)
	return nil
}

// --- rezerwacje ---

func (s *Store) CreateReservation(_ context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members.get(r.MemberID); !ok {
		return fmt.Errorf("członek %s: %w", r.MemberID, store.ErrNotFound)
	}
	if _, ok := s.books.get(r.BookID); !ok {
		return fmt.Errorf("książka %s: %w", r.BookID, store.ErrNotFound)
	}

	now := s.now()
	r.ID = newID(r.ID)
	r.CreatedAt = now
	r.UpdatedAt = now
	s.reservations.put(r.ID, *r)
	return nil
}

func (s *Store) GetReservation(_ context.Context, id string) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListReservations(_ context.Context) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pointers(s.reservations.all()), nil
}

func (s *Store) UpdateReservation(_ context.Context, id string, fn store.ReservationMutator) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := fn(&r); err != nil {
		return nil, err
	}
	r.ID = id
	r.UpdatedAt = s.now()
	s.reservations.put(id, r)
	return &r, nil
}

// --- pomocnicze ---

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func paginate[T any](items []T, page models.PageRequest) ([]*T, int, error) {
	page = page.Normalize()
	start, end := page.Window(len(items))
	return pointers(items[start:end]), len(items), nil
}
