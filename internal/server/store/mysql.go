package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"quicknotes/internal/models"
)

type MySQL struct {
	db *sql.DB
}

// OpenMySQL connects and creates the tables if they do not exist. The
// DSN must include parseTime=true so timestamps scan into time.Time.
func OpenMySQL(dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	m := &MySQL{db: db}
	if err := m.createTables(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MySQL) createTables() error {
	userTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		token VARCHAR(512),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	notesTable := `
	CREATE TABLE IF NOT EXISTS notes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		user_id INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	if _, err := m.db.Exec(userTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	if _, err := m.db.Exec(notesTable); err != nil {
		return fmt.Errorf("create notes table: %w", err)
	}
	return nil
}

func (m *MySQL) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	res, err := m.db.ExecContext(ctx, "INSERT INTO users (email, password_hash) VALUES (?, ?)", email, passwordHash)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return User{ID: int(id), Email: email, PasswordHash: passwordHash}, nil
}

func (m *MySQL) UserByEmail(ctx context.Context, email string) (User, error) {
	return m.scanUser(m.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, COALESCE(token, '') FROM users WHERE email = ?", email))
}

func (m *MySQL) UserByID(ctx context.Context, id int) (User, error) {
	return m.scanUser(m.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, COALESCE(token, '') FROM users WHERE id = ?", id))
}

func (m *MySQL) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (m *MySQL) SetUserToken(ctx context.Context, id int, tok string) error {
	_, err := m.db.ExecContext(ctx, "UPDATE users SET token = ? WHERE id = ?", tok, id)
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

func (m *MySQL) NotesByUser(ctx context.Context, userID int) ([]models.Note, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, title, content, user_id, created_at, updated_at FROM notes WHERE user_id = ? ORDER BY created_at ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (m *MySQL) CreateNote(ctx context.Context, userID int, title, content string) (models.Note, error) {
	res, err := m.db.ExecContext(ctx,
		"INSERT INTO notes (title, content, user_id) VALUES (?, ?, ?)", title, content, userID)
	if err != nil {
		return models.Note{}, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return m.noteByID(ctx, int(id))
}

func (m *MySQL) UpdateNote(ctx context.Context, userID, id int, title, content string) (models.Note, error) {
	var owner int
	err := m.db.QueryRowContext(ctx, "SELECT user_id FROM notes WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return models.Note{}, ErrNotFound
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("update note: %w", err)
	}
	if _, err := m.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, content = ? WHERE id = ? AND user_id = ?", title, content, id, userID); err != nil {
		return models.Note{}, fmt.Errorf("update note: %w", err)
	}
	return m.noteByID(ctx, id)
}

func (m *MySQL) DeleteNote(ctx context.Context, userID, id int) error {
	res, err := m.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MySQL) noteByID(ctx context.Context, id int) (models.Note, error) {
	var n models.Note
	err := m.db.QueryRowContext(ctx,
		"SELECT id, title, content, user_id, created_at, updated_at FROM notes WHERE id = ?", id).
		Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, ErrNotFound
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("scan note: %w", err)
	}
	return n, nil
}

func (m *MySQL) Close() error {
	return m.db.Close()
}
