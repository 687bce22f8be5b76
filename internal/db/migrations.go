package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Version 1 lives in migrations/00001_create_phones.sql. The column additions
// are Go migrations because SQLite has no ADD COLUMN IF NOT EXISTS, and
// databases written before versioning existed may already carry some of them.
func goMigrations() []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(2, &goose.GoFunc{RunTx: addImageDataColumn}, nil),
		goose.NewGoMigration(3, &goose.GoFunc{RunTx: addSpecColumns}, nil),
	}
}

func addImageDataColumn(ctx context.Context, tx *sql.Tx) error {
	return addColumnIfMissing(ctx, tx, "phones", "image_data", "TEXT")
}

// specColumnsV3 is the set of specification columns as of version 3. It is
// frozen: new columns go into a new migration version.
var specColumnsV3 = []string{
	"review",
	"network_technology",
	"launch_date_international",
	"launch_date_france",
	"dimensions",
	"weight",
	"sim",
	"display_type",
	"display_size",
	"display_resolution",
	"display_protection",
	"os",
	"os_version",
	"chipset",
	"cpu",
	"gpu",
	"internal_memory",
	"ram",
	"main_camera_specs",
	"main_camera_video",
	"selfie_camera_specs",
	"selfie_camera_video",
	"speakers",
	"jack_35mm",
	"wlan",
	"bluetooth",
	"positioning",
	"nfc",
	"infrared_port",
	"radio",
	"usb",
	"sensors",
	"battery_type",
	"battery_capacity",
	"my_phone_color",
	"my_phone_storage",
}

func addSpecColumns(ctx context.Context, tx *sql.Tx) error {
	for _, col := range specColumnsV3 {
		if err := addColumnIfMissing(ctx, tx, "phones", col, "TEXT"); err != nil {
			return err
		}
	}
	return nil
}

func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, colType string) error {
	exists, err := columnExists(ctx, tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, colType)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func columnExists(ctx context.Context, q queryer, table, column string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect column %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}
