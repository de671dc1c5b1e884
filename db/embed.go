// Package db embeds the database schema applied at startup.
package db

import _ "embed"

// Schema contains the DDL for the orders table and its indexes. Statements
// are idempotent so running them on every start is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
