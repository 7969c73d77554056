package contacts

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// LoadSQLite loads the label directory from a SQLite database.
//
// Expected schema:
//
//	CREATE TABLE contacts (label TEXT NOT NULL, email TEXT NOT NULL);
//	CREATE TABLE label_colors (label TEXT PRIMARY KEY, color_id TEXT NOT NULL);
//
// The label_colors table is optional; labels without a row fall back to
// the default color table.
func LoadSQLite(path string) (*StaticDirectory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contacts database: %w", err)
	}
	defer db.Close()

	emails, err := loadContactRows(db)
	if err != nil {
		return nil, err
	}

	colors, err := loadColorRows(db)
	if err != nil {
		return nil, err
	}

	return NewStaticDirectory(emails, colors), nil
}

func loadContactRows(db *sql.DB) (map[string][]string, error) {
	rows, err := db.Query(`SELECT label, email FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	emails := map[string][]string{}
	for rows.Next() {
		var label, email string
		if err := rows.Scan(&label, &email); err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		emails[label] = append(emails[label], email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}
	return emails, nil
}

func loadColorRows(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT label, color_id FROM label_colors`)
	if err != nil {
		// The color table is optional.
		return map[string]string{}, nil
	}
	defer rows.Close()

	colors := map[string]string{}
	for rows.Next() {
		var label, color string
		if err := rows.Scan(&label, &color); err != nil {
			return nil, fmt.Errorf("failed to scan color row: %w", err)
		}
		colors[label] = color
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read label colors: %w", err)
	}
	return colors, nil
}
