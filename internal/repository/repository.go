// Package repository contains the sqlx data-access layer. Each repository
// owns the SQL for one table; callers never build queries themselves.
package repository

import "errors"

// errNoRowsAffected signals an UPDATE or DELETE that matched nothing.
var errNoRowsAffected = errors.New("no rows affected")
