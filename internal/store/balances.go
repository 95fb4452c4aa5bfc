package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pointfall/internal/economy"
)

var ErrNotFound = errors.New("store: balance not found")

// Ledger entry kinds.
const (
	KindAdd         = "add"
	KindSubtract    = "subtract"
	KindTransferOut = "transfer_out"
	KindTransferIn  = "transfer_in"
)

// Entry is one ledger row. Delta is signed; PointsAfter is the settled
// balance right after the change.
type Entry struct {
	ID          string
	UserID      string
	Kind        string
	Delta       float64
	PointsAfter float64
	CreatedAt   time.Time
}

// Store applies economy rules to balances persisted in SQLite. Every
// mutation settles decay first and appends to the ledger in the same
// transaction.
type Store struct {
	db    *sql.DB
	model economy.Model
}

func Open(path string, model economy.Model) (*Store, error) {
	db, err := InitSQLite(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, model: model}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Model() economy.Model { return s.model }

// Get returns the stored (undecayed) balance for user.
func (s *Store) Get(ctx context.Context, user string) (economy.Balance, error) {
	b, err := getBalance(ctx, s.db, user)
	if err != nil {
		return economy.Balance{}, fmt.Errorf("store: get %q: %w", user, err)
	}
	return b, nil
}

// Balance returns the user's balance, or a zero balance when the user has
// none yet. It satisfies the game's balance source.
func (s *Store) Balance(ctx context.Context, user string) (economy.Balance, error) {
	b, err := s.Get(ctx, user)
	if errors.Is(err, ErrNotFound) {
		return economy.Balance{}, nil
	}
	return b, err
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getBalance(ctx context.Context, q querier, user string) (economy.Balance, error) {
	var (
		points float64
		stamp  string
	)
	err := q.QueryRowContext(ctx,
		`SELECT points, updated_at FROM balances WHERE user_id = ?`, user,
	).Scan(&points, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return economy.Balance{}, ErrNotFound
	}
	if err != nil {
		return economy.Balance{}, err
	}
	at, _ := economy.ParseStamp(stamp)
	return economy.Balance{Points: points, UpdatedAt: at}, nil
}

func (s *Store) Add(ctx context.Context, user string, amount float64, now time.Time) (economy.Balance, error) {
	var out economy.Balance
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b, err := loadOrZero(ctx, tx, user)
		if err != nil {
			return err
		}
		if out, err = s.model.Add(b, amount, now); err != nil {
			return err
		}
		return commitChange(ctx, tx, user, KindAdd, amount, out)
	})
	if err != nil {
		return economy.Balance{}, fmt.Errorf("store: add %q: %w", user, err)
	}
	return out, nil
}

func (s *Store) Subtract(ctx context.Context, user string, amount float64, now time.Time) (economy.Balance, error) {
	var out economy.Balance
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b, err := loadOrZero(ctx, tx, user)
		if err != nil {
			return err
		}
		if out, err = s.model.Subtract(b, amount, now); err != nil {
			return err
		}
		return commitChange(ctx, tx, user, KindSubtract, -amount, out)
	})
	if err != nil {
		return economy.Balance{}, fmt.Errorf("store: subtract %q: %w", user, err)
	}
	return out, nil
}

// Transfer moves amount between two users atomically.
func (s *Store) Transfer(ctx context.Context, from, to string, amount float64, now time.Time) (economy.Balance, economy.Balance, error) {
	if from == to {
		return economy.Balance{}, economy.Balance{}, fmt.Errorf("store: transfer %q to itself", from)
	}
	var fromOut, toOut economy.Balance
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		fb, err := loadOrZero(ctx, tx, from)
		if err != nil {
			return err
		}
		tb, err := loadOrZero(ctx, tx, to)
		if err != nil {
			return err
		}
		if fromOut, toOut, err = s.model.Transfer(fb, tb, amount, now); err != nil {
			return err
		}
		if err := commitChange(ctx, tx, from, KindTransferOut, -amount, fromOut); err != nil {
			return err
		}
		return commitChange(ctx, tx, to, KindTransferIn, amount, toOut)
	})
	if err != nil {
		return economy.Balance{}, economy.Balance{}, fmt.Errorf("store: transfer %q -> %q: %w", from, to, err)
	}
	return fromOut, toOut, nil
}

// History returns the user's most recent ledger entries, newest first.
func (s *Store) History(ctx context.Context, user string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, delta, points_after, created_at
		FROM ledger WHERE user_id = ?
		ORDER BY seq DESC LIMIT ?`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("store: history %q: %w", user, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e     Entry
			stamp string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Delta, &e.PointsAfter, &stamp); err != nil {
			return nil, fmt.Errorf("store: history %q: %w", user, err)
		}
		e.CreatedAt, _ = economy.ParseStamp(stamp)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: history %q: %w", user, err)
	}
	return out, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func loadOrZero(ctx context.Context, tx *sql.Tx, user string) (economy.Balance, error) {
	b, err := getBalance(ctx, tx, user)
	if errors.Is(err, ErrNotFound) {
		return economy.Balance{}, nil
	}
	return b, err
}

func commitChange(ctx context.Context, tx *sql.Tx, user, kind string, delta float64, b economy.Balance) error {
	stamp := b.UpdatedAt.UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO balances (user_id, points, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET points = excluded.points, updated_at = excluded.updated_at`,
		user, b.Points, stamp,
	); err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger (id, user_id, kind, delta, points_after, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger))`,
		uuid.NewString(), user, kind, delta, b.Points, stamp,
	); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}
