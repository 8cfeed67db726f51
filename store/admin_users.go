package store

import (
	"time"
)

type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UpsertAdminUser creates the user or replaces its password hash.
func (db *DB) UpsertAdminUser(email, passwordHash string) error {
	res, err := db.Exec(db.Q(`UPDATE admin_users SET password_hash=? WHERE email=?`), passwordHash, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = db.Exec(db.Q(`INSERT INTO admin_users (email, password_hash) VALUES (?, ?)`), email, passwordHash)
	return err
}

func (db *DB) GetAdminUser(email string) (*AdminUser, error) {
	var u AdminUser
	var createdAt any
	err := db.QueryRow(db.Q(`SELECT id, email, password_hash, created_at FROM admin_users WHERE email=?`), email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

func (db *DB) AdminUserExists() (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&count)
	return count > 0, err
}
