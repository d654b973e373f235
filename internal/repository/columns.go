// Package repository provides SQL column definitions for database operations.
// This file centralizes column lists to prevent drift between queries and ensure consistency.
package repository

import (
	"strings"
)

// Table column definitions - these must match the database schema exactly.
// When adding/removing columns, update these definitions and all relevant queries will use them.

// CallColumns defines the columns for the calls table.
var CallColumns = TableColumns{
	TableName: "calls",
	Columns: []string{
		"id",
		"provider_call_id",
		"provider",
		"phone_number",
		"from_number",
		"caller_name",
		"status",
		"started_at",
		"ended_at",
		"duration_seconds",
		"transcript",
		"transcript_json",
		"recording_url",
		"order_id",
		"extracted_data",
		"error_message",
		"created_at",
		"updated_at",
		"deleted_at",
	},
}

// UserColumns defines the columns for the users table.
var UserColumns = TableColumns{
	TableName: "users",
	Columns: []string{
		"id",
		"email",
		"password_hash",
		"created_at",
		"updated_at",
		"deleted_at",
	},
}

// SessionColumns defines the columns for the sessions table.
var SessionColumns = TableColumns{
	TableName: "sessions",
	Columns: []string{
		"id",
		"user_id",
		"token",
		"expires_at",
		"created_at",
		"last_active_at",
		"ip_address",
		"user_agent",
		"previous_token",
		"rotated_at",
	},
}

// OrderColumns defines the columns for the orders table.
var OrderColumns = TableColumns{
	TableName: "orders",
	Columns: []string{
		"id",
		"call_id",
		"fulfilment",
		"items_json",
		"total_cents",
		"customer_name",
		"customer_phone",
		"delivery_address",
		"status",
		"created_at",
		"updated_at",
	},
}

// SettingsColumns defines the columns for the settings table.
var SettingsColumns = TableColumns{
	TableName: "settings",
	Columns: []string{
		"id",
		"key",
		"value",
		"value_type",
		"category",
		"description",
		"created_at",
		"updated_at",
	},
}

// TableColumns provides helper methods for generating SQL fragments.
type TableColumns struct {
	TableName string
	Columns   []string
}

// Select returns a comma-separated list of columns for SELECT queries.
// Example: "id, name, email, created_at"
func (tc TableColumns) Select() string {
	return strings.Join(tc.Columns, ", ")
}

// SelectPrefixed returns columns prefixed with table name for joins.
// Example: "users.id, users.name, users.email"
func (tc TableColumns) SelectPrefixed() string {
	prefixed := make([]string, len(tc.Columns))
	for i, col := range tc.Columns {
		prefixed[i] = tc.TableName + "." + col
	}
	return strings.Join(prefixed, ", ")
}

// SelectAliased returns columns with aliases for joins.
// Example: "users.id AS users_id, users.name AS users_name"
func (tc TableColumns) SelectAliased(alias string) string {
	aliased := make([]string, len(tc.Columns))
	for i, col := range tc.Columns {
		aliased[i] = tc.TableName + "." + col + " AS " + alias + "_" + col
	}
	return strings.Join(aliased, ", ")
}

// Placeholders returns numbered placeholders for the columns.
// Example: "$1, $2, $3, $4" for 4 columns
func (tc TableColumns) Placeholders() string {
	placeholders := make([]string, len(tc.Columns))
	for i := range tc.Columns {
		placeholders[i] = "$" + itoa(i+1)
	}
	return strings.Join(placeholders, ", ")
}

// PlaceholdersFrom returns numbered placeholders starting from a given number.
// Example: PlaceholdersFrom(3) for 4 columns returns "$3, $4, $5, $6"
func (tc TableColumns) PlaceholdersFrom(start int) string {
	placeholders := make([]string, len(tc.Columns))
	for i := range tc.Columns {
		placeholders[i] = "$" + itoa(start+i)
	}
	return strings.Join(placeholders, ", ")
}

// UpdateSet returns the SET clause for UPDATE queries (excluding first column, assumed to be id).
// Example: "name = $2, email = $3, updated_at = $4"
func (tc TableColumns) UpdateSet() string {
	if len(tc.Columns) <= 1 {
		return ""
	}
	parts := make([]string, len(tc.Columns)-1)
	for i := 1; i < len(tc.Columns); i++ {
		parts[i-1] = tc.Columns[i] + " = $" + itoa(i+1)
	}
	return strings.Join(parts, ", ")
}

// UpdateSetFrom returns the SET clause starting from a given placeholder number.
func (tc TableColumns) UpdateSetFrom(start int) string {
	if len(tc.Columns) <= 1 {
		return ""
	}
	parts := make([]string, len(tc.Columns)-1)
	for i := 1; i < len(tc.Columns); i++ {
		parts[i-1] = tc.Columns[i] + " = $" + itoa(start+i-1)
	}
	return strings.Join(parts, ", ")
}

// InsertColumns returns a comma-separated list of columns for INSERT queries.
// Same as Select() but explicitly named for clarity.
func (tc TableColumns) InsertColumns() string {
	return tc.Select()
}

// Count returns the number of columns.
func (tc TableColumns) Count() int {
	return len(tc.Columns)
}

// Without returns a new TableColumns excluding the specified columns.
func (tc TableColumns) Without(exclude ...string) TableColumns {
	excludeMap := make(map[string]bool, len(exclude))
	for _, col := range exclude {
		excludeMap[col] = true
	}

	filtered := make([]string, 0, len(tc.Columns))
	for _, col := range tc.Columns {
		if !excludeMap[col] {
			filtered = append(filtered, col)
		}
	}

	return TableColumns{
		TableName: tc.TableName,
		Columns:   filtered,
	}
}

// Only returns a new TableColumns containing only the specified columns.
func (tc TableColumns) Only(include ...string) TableColumns {
	includeMap := make(map[string]bool, len(include))
	for _, col := range include {
		includeMap[col] = true
	}

	filtered := make([]string, 0, len(include))
	for _, col := range tc.Columns {
		if includeMap[col] {
			filtered = append(filtered, col)
		}
	}

	return TableColumns{
		TableName: tc.TableName,
		Columns:   filtered,
	}
}

// itoa converts an integer to a string without importing strconv.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	if i < 0 {
		return "-" + itoa(-i)
	}

	var result []byte
	for i > 0 {
		result = append([]byte{byte('0' + i%10)}, result...)
		i /= 10
	}
	return string(result)
}
