package services

import (
	"context"
	"fmt"
	"time"

	"autazul-backend-go/internal/db"
)

var backupTables = []string{
	"users",
	"children",
	"child_coparents",
	"child_shares",
	"child_professionals",
	"invites",
	"events",
	"notifications",
	"appointments",
	"lgpd_requests",
	"admin_settings",
	"audit_logs",
}

type Backup struct {
	GeneratedAt time.Time                           `json:"generatedAt"`
	Tables      map[string][]map[string]interface{} `json:"tables"`
}

// DumpTables reads every application table into memory. Password hashes
// are left out.
func DumpTables(ctx context.Context, database *db.DB) (Backup, error) {
	backup := Backup{GeneratedAt: nowFunc(), Tables: map[string][]map[string]interface{}{}}
	for _, table := range backupTables {
		rows, err := database.QueryxContext(ctx, "SELECT * FROM "+table)
		if err != nil {
			return Backup{}, fmt.Errorf("dump %s: %w", table, err)
		}
		items := []map[string]interface{}{}
		for rows.Next() {
			row := map[string]interface{}{}
			if err := rows.MapScan(row); err != nil {
				_ = rows.Close()
				return Backup{}, fmt.Errorf("dump %s: %w", table, err)
			}
			for key, value := range row {
				if raw, ok := value.([]byte); ok {
					row[key] = string(raw)
				}
			}
			delete(row, "password_hash")
			items = append(items, row)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return Backup{}, fmt.Errorf("dump %s: %w", table, err)
		}
		_ = rows.Close()
		backup.Tables[table] = items
	}
	return backup, nil
}
