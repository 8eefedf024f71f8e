package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/medfinder/medfinder/internal/models"
)

// SQLiteLoader reads a catalog from a scraper-produced SQLite database with a
// medicines table.
func SQLiteLoader(dbPath string) Loader {
	return func() ([]models.MedicineRecord, error) {
		db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("open catalog db: %w", err)
		}
		defer db.Close()

		rows, err := db.Query(`
			SELECT name,
			       COALESCE(brand, ''),
			       COALESCE(composition, ''),
			       COALESCE(price, ''),
			       COALESCE(manufacturer, ''),
			       COALESCE(pack_size, ''),
			       COALESCE(url, '')
			FROM medicines`)
		if err != nil {
			return nil, fmt.Errorf("query medicines: %w", err)
		}
		defer rows.Close()

		var medicines []models.MedicineRecord
		for rows.Next() {
			var m models.MedicineRecord
			if err := rows.Scan(&m.Name, &m.Brand, &m.Composition, &m.Price,
				&m.Manufacturer, &m.PackSize, &m.URL); err != nil {
				return nil, fmt.Errorf("scan medicine: %w", err)
			}
			medicines = append(medicines, m)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read medicines: %w", err)
		}
		return medicines, nil
	}
}
