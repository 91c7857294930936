package pgstore

import "errors"

var (
	ErrSchema = errors.New("pgstore.ensure_schema_failed")
	ErrInsert = errors.New("pgstore.insert_failed")
	ErrUpdate = errors.New("pgstore.update_failed")
	ErrSelect = errors.New("pgstore.select_failed")
	ErrDelete = errors.New("pgstore.delete_failed")
)
