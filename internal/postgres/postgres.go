// Package postgres implementuje store.Store na PostgreSQL (pgxpool + zapytania budowane przez goqu).
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialekt postgres
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-management-api/internal/store"
)

// Schema to DDL tabel biblioteki
//
//go:embed schema.sql
var Schema string

const dialectPostgres = "postgres"

var builder = goqu.Dialect(dialectPostgres)

func init() {
	// Wartości zawsze trafiają do zapytania jako parametry $n
	goqu.SetDefaultPrepared(true)
}

// querier to wspólna część pgxpool.Pool i pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// sqlBuilder to dowolne zapytanie goqu
type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// PoolConfig buduje konfigurację puli połączeń dla podanego DSN
func PoolConfig(dsn string, maxConns int32) (*pgxpool.Config, error) {
	const defaultMinConnections = int32(1)
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("nieprawidłowy DATABASE_URL: %w", err)
	}

	if maxConns > 0 {
		dbConfig.MaxConns = maxConns
	}
	dbConfig.MinConns = min(defaultMinConnections, dbConfig.MaxConns)
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

// Store implementuje store.Store na PostgreSQL
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open łączy się z bazą i sprawdza połączenie
func Open(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := PoolConfig(dsn, maxConns)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("błąd tworzenia puli połączeń: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("błąd połączenia z bazą: %w", err)
	}

	return New(pool), nil
}

// New tworzy magazyn na istniejącej puli
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Migrate tworzy brakujące tabele
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("błąd tworzenia schematu: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Exists sprawdza czy rekord istnieje
func (s *Store) Exists(ctx context.Context, entity store.Entity, id string) (bool, error) {
	switch entity {
	case store.EntityGenre, store.EntityUser, store.EntityMember,
		store.EntityBook, store.EntityLoan, store.EntityReservation:
	default:
		return false, fmt.Errorf("nieznana tabela: %s", entity)
	}

	ds := builder.From(string(entity)).
		Select(goqu.L("1")).
		Where(goqu.C("id").Eq(id)).
		Limit(1)

	rows, err := query(ctx, s.pool, ds)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("błąd sprawdzania %s/%s: %w", entity, id, err)
	}
	return found, nil
}

func newID() string {
	return uuid.NewString()
}

func query(ctx context.Context, q querier, ds sqlBuilder) (pgx.Rows, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("błąd budowania zapytania: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, store.ErrNotFound)
	}
	return rows, nil
}

// exec wykonuje zapytanie modyfikujące; naruszenie klucza obcego zamieniane jest na fkErr
func exec(ctx context.Context, q querier, ds sqlBuilder, fkErr error) (int64, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("błąd budowania zapytania: %w", err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, fkErr)
	}
	return tag.RowsAffected(), nil
}

func selectAll[T any](ctx context.Context, q querier, ds sqlBuilder) ([]*T, error) {
	rows, err := query(ctx, q, ds)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("błąd odczytu wierszy: %w", err)
	}
	return items, nil
}

func selectOne[T any](ctx context.Context, q querier, ds sqlBuilder) (*T, error) {
	rows, err := query(ctx, q, ds)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd odczytu wiersza: %w", err)
	}
	return item, nil
}

func count(ctx context.Context, q querier, ds *goqu.SelectDataset) (int, error) {
	rows, err := query(ctx, q, ds.Select(goqu.COUNT(goqu.Star())))
	if err != nil {
		return 0, err
	}
	total, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, fmt.Errorf("błąd liczenia wierszy: %w", err)
	}
	return int(total), nil
}

// mapError klasyfikuje błędy PostgreSQL na błędy warstwy danych
func mapError(err error, fkErr error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, store.ErrDuplicate)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, fkErr)
	default:
		return err
	}
}

// inTx wykonuje fn w transakcji; błąd fn wycofuje zmiany
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("błąd rozpoczęcia transakcji: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(err, store.ErrNotFound)
	}
	return nil
}

// likePattern buduje wzorzec ILIKE dla wyszukiwania fragmentu tekstu
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// col zwraca kolumnę z prefiksem tabeli
func col(table string, names ...string) []interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = goqu.T(table).Col(n)
	}
	return out
}
