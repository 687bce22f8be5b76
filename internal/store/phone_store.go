package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/phonegallery/internal/domain"
)

// ErrNotFound is returned when an update or delete targets a missing phone.
var ErrNotFound = errors.New("phone not found")

// writeColumns are the columns set by both insert and update, in argument order.
var writeColumns = append([]string{
	"brand", "name", "year_start", "year_end", "kept", "liked", "image", "image_data",
}, domain.SpecColumns...)

var (
	selectColumns = "id, " + strings.Join(writeColumns, ", ") + ", created_at, updated_at"

	insertQuery = fmt.Sprintf("INSERT INTO phones (%s) VALUES (%s)",
		strings.Join(writeColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(writeColumns)), ", "),
	)

	updateQuery = fmt.Sprintf("UPDATE phones SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		strings.Join(writeColumns, " = ?, "),
	)
)

type PhoneStore struct {
	db *sql.DB
}

func NewPhoneStore(db *sql.DB) *PhoneStore {
	return &PhoneStore{db: db}
}

// ImageRef identifies a phone whose image is still only a path reference.
type ImageRef struct {
	ID   int64
	Path string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhone(row rowScanner) (*domain.Phone, error) {
	p := &domain.Phone{}
	var (
		yearEnd   sql.NullInt64
		imageData sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	specs := make([]sql.NullString, len(domain.SpecColumns))

	dest := []any{&p.ID, &p.Brand, &p.Name, &p.YearStart, &yearEnd, &p.Kept, &p.Liked, &p.ImagePath, &imageData}
	for i := range specs {
		dest = append(dest, &specs[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if yearEnd.Valid {
		y := int(yearEnd.Int64)
		p.YearEnd = &y
	}
	if imageData.Valid {
		p.ImageData = &imageData.String
	}
	fields := p.Specs.Fields()
	for i, s := range specs {
		if s.Valid {
			v := s.String
			*fields[i] = &v
		}
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

func writeArgs(p *domain.Phone) []any {
	args := []any{p.Brand, p.Name, p.YearStart, p.YearEnd, p.Kept, p.Liked, p.ImagePath, p.ImageData}
	for _, f := range p.Specs.Fields() {
		args = append(args, *f)
	}
	return args
}

func (s *PhoneStore) Create(ctx context.Context, p *domain.Phone) (*domain.Phone, error) {
	result, err := s.db.ExecContext(ctx, insertQuery, writeArgs(p)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create phone: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// CreateMany inserts all phones in one transaction. Either every phone is
// stored or none is.
func (s *PhoneStore) CreateMany(ctx context.Context, phones []*domain.Phone) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				slog.Error("failed to roll back phone insert", "error", rerr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			slog.Error("failed to close statement", "error", cerr)
		}
	}()

	for _, p := range phones {
		if _, err = stmt.ExecContext(ctx, writeArgs(p)...); err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", p.Brand, p.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit phones: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no phone has the given id.
func (s *PhoneStore) GetByID(ctx context.Context, id int64) (*domain.Phone, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM phones WHERE id = ?", id)
	p, err := scanPhone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phone: %w", err)
	}
	return p, nil
}

// List returns every phone, current models first, then by end year and start
// year, most recent first.
func (s *PhoneStore) List(ctx context.Context) ([]*domain.Phone, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+` FROM phones
		ORDER BY year_end DESC NULLS FIRST, year_start DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list phones: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	phones := make([]*domain.Phone, 0)
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phone: %w", err)
		}
		phones = append(phones, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phones: %w", err)
	}

	return phones, nil
}

// Update overwrites every column of the phone with the given id.
func (s *PhoneStore) Update(ctx context.Context, id int64, p *domain.Phone) (*domain.Phone, error) {
	args := append(writeArgs(p), id)
	result, err := s.db.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update phone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *PhoneStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM phones WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete phone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PhoneStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM phones").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count phones: %w", err)
	}
	return count, nil
}

// ListMissingImageData returns the phones that have no embedded image yet.
func (s *PhoneStore) ListMissingImageData(ctx context.Context) ([]ImageRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image FROM phones WHERE image_data IS NULL ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list phones without image data: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var refs []ImageRef
	for rows.Next() {
		var ref ImageRef
		if err := rows.Scan(&ref.ID, &ref.Path); err != nil {
			return nil, fmt.Errorf("failed to scan image ref: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image refs: %w", err)
	}

	return refs, nil
}

// SetImageData stores embedded image data for a phone that has none. It
// reports false when the phone is missing or already has data.
func (s *PhoneStore) SetImageData(ctx context.Context, id int64, data string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE phones SET image_data = ? WHERE id = ? AND image_data IS NULL
	`, data, id)
	if err != nil {
		return false, fmt.Errorf("failed to set image data: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
