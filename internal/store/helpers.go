package store

import "database/sql"

// transitioned reports whether a precondition-guarded UPDATE actually moved
// a row. Zero rows affected means another worker already transitioned this
// record out of the expected status between the select and the update — a
// benign, expected race under concurrent workers (§4.1, §7), not an error.
func transitioned(result sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return false, affectedErr
	}
	return n > 0, nil
}
