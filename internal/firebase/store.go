package firebase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"library-management-api/internal/store"
)

// Nazwy kolekcji w Firestore
const (
	genresCollection       = string(store.EntityGenre)
	usersCollection        = string(store.EntityUser)
	membersCollection      = string(store.EntityMember)
	booksCollection        = string(store.EntityBook)
	loansCollection        = string(store.EntityLoan)
	reservationsCollection = string(store.EntityReservation)
)

// Store implementuje store.Store na kolekcjach Firestore.
// Operacje odczyt-zapis i sprawdzanie unikalności idą przez RunTransaction.
type Store struct {
	fs  *firestore.Client
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// NewStore tworzy magazyn na podanym kliencie Firestore
func NewStore(fs *firestore.Client) *Store {
	return &Store{fs: fs, now: time.Now}
}

// Close nie zamyka klienta - należy on do Client
func (s *Store) Close() error {
	return nil
}

// ref zwraca referencję dokumentu albo ErrNotFound dla nieprawidłowego ID
func (s *Store) ref(collection, id string) (*firestore.DocumentRef, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, store.ErrNotFound
	}
	return s.fs.Collection(collection).Doc(id), nil
}

// Exists sprawdza czy dokument istnieje
func (s *Store) Exists(ctx context.Context, entity store.Entity, id string) (bool, error) {
	ref, err := s.ref(string(entity), id)
	if err != nil {
		return false, nil
	}
	_, err = ref.Get(ctx)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("błąd sprawdzania dokumentu %s/%s: %w", entity, id, err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// getDoc pobiera dokument i dekoduje go do D
func getDoc[D any](ctx context.Context, ref *firestore.DocumentRef) (*D, error) {
	snap, err := ref.Get(ctx)
	if isNotFound(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania dokumentu %s: %w", ref.Path, err)
	}
	var d D
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("błąd parsowania dokumentu %s: %w", ref.Path, err)
	}
	return &d, nil
}

// txGetDoc działa jak getDoc w ramach transakcji
func txGetDoc[D any](tx *firestore.Transaction, ref *firestore.DocumentRef) (*D, error) {
	snap, err := tx.Get(ref)
	if isNotFound(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania dokumentu %s: %w", ref.Path, err)
	}
	var d D
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("błąd parsowania dokumentu %s: %w", ref.Path, err)
	}
	return &d, nil
}

// listDocs pobiera wszystkie dokumenty zapytania i konwertuje je do modeli
func listDocs[D any, M any](ctx context.Context, q firestore.Query, conv func(id string, d *D) (*M, error)) ([]*M, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*M
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji dokumentów: %w", err)
		}

		var d D
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("błąd parsowania dokumentu %s: %w", snap.Ref.ID, err)
		}
		m, err := conv(snap.Ref.ID, &d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// findOne zwraca pierwszy dokument pasujący do pola albo ErrNotFound
func findOne[D any, M any](ctx context.Context, q firestore.Query, conv func(id string, d *D) (*M, error)) (*M, error) {
	items, err := listDocs(ctx, q.Limit(1), conv)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	return items[0], nil
}

// txTaken sprawdza w transakcji, czy wartość pola jest zajęta przez inny dokument
func txTaken(tx *firestore.Transaction, q firestore.Query, exceptID string) (bool, error) {
	snaps, err := tx.Documents(q.Limit(2)).GetAll()
	if err != nil {
		return false, fmt.Errorf("błąd sprawdzania unikalności: %w", err)
	}
	for _, snap := range snaps {
		if snap.Ref.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// txRefs zwraca referencje dokumentów pasujących do zapytania
func txRefs(tx *firestore.Transaction, q firestore.Query) ([]*firestore.DocumentRef, error) {
	snaps, err := tx.Documents(q).GetAll()
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania powiązanych dokumentów: %w", err)
	}
	refs := make([]*firestore.DocumentRef, len(snaps))
	for i, snap := range snaps {
		refs[i] = snap.Ref
	}
	return refs, nil
}

// txDeleteCascade usuwa dokument razem z wypożyczeniami i rezerwacjami, które na niego wskazują
func (s *Store) txDeleteCascade(ctx context.Context, collection, field, id string) error {
	ref, err := s.ref(collection, id)
	if err != nil {
		return err
	}

	return s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return store.ErrNotFound
			}
			return fmt.Errorf("błąd pobierania dokumentu %s: %w", ref.Path, err)
		}

		loans, err := txRefs(tx, s.fs.Collection(loansCollection).Where(field, "==", id))
		if err != nil {
			return err
		}
		reservations, err := txRefs(tx, s.fs.Collection(reservationsCollection).Where(field, "==", id))
		if err != nil {
			return err
		}

		for _, r := range append(loans, reservations...) {
			if err := tx.Delete(r); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
}

// txRequire sprawdza w transakcji, że dokument istnieje
func txRequire(tx *firestore.Transaction, ref *firestore.DocumentRef, label string) error {
	_, err := tx.Get(ref)
	if isNotFound(err) {
		return fmt.Errorf("%s %s: %w", label, ref.ID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("błąd pobierania dokumentu %s: %w", ref.Path, err)
	}
	return nil
}

// byCreation sortuje kolekcję w kolejności dodania
func (s *Store) byCreation(collection string) firestore.Query {
	return s.fs.Collection(collection).OrderBy("created_at", firestore.Asc)
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
