// Package archive keeps a copy of every delivered report in the database.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/huellitas-unexpo/rescuebot/internal/report"
)

// ErrNotFound is returned by Get when no report has the given id.
var ErrNotFound = errors.New("archive: report not found")

// Entry is a delivered report together with who sent it.
type Entry struct {
	Report      report.Report
	Sender      report.Sender
	ChatID      int64
	SubmittedAt time.Time
}

// Record is one archived row.
type Record struct {
	ID           string    `db:"id"`
	UserID       int64     `db:"user_id"`
	ChatID       int64     `db:"chat_id"`
	Username     string    `db:"username"`
	Anonymous    bool      `db:"anonymous"`
	AnimalType   string    `db:"animal_type"`
	Location     string    `db:"location"`
	HealthStatus string    `db:"health_status"`
	ContactName  string    `db:"contact_name"`
	ContactPhone string    `db:"contact_phone"`
	Description  string    `db:"description"`
	PhotoRef     string    `db:"photo_ref"`
	CreatedAt    time.Time `db:"created_at"`
}

// Repository stores reports through sqlx. Queries are written with `?`
// placeholders and rebound for the driver in use.
type Repository struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

const insertReport = `INSERT INTO reports
	(id, user_id, chat_id, username, anonymous, animal_type, location, health_status,
	 contact_name, contact_phone, description, photo_ref, created_at)
	VALUES (:id, :user_id, :chat_id, :username, :anonymous, :animal_type, :location, :health_status,
	 :contact_name, :contact_phone, :description, :photo_ref, :created_at)`

// Save archives e and returns the new record id. Anonymous reports are
// stored without the sender's identity.
func (r *Repository) Save(ctx context.Context, e Entry) (string, error) {
	rec := newRecord(e)
	rec.ID = r.newID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	if _, err := r.db.NamedExecContext(ctx, insertReport, rec); err != nil {
		return "", fmt.Errorf("archive: insert report: %w", err)
	}
	return rec.ID, nil
}

// Get loads one archived report.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	q := r.db.Rebind(`SELECT id, user_id, chat_id, username, anonymous, animal_type, location,
		health_status, contact_name, contact_phone, description, photo_ref, created_at
		FROM reports WHERE id = ?`)
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("archive: get report %s: %w", id, err)
	}
	return rec, nil
}

// Ping checks the database behind the archive.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func newRecord(e Entry) Record {
	rep := e.Report
	rec := Record{
		Anonymous:    rep.Anonymous(),
		AnimalType:   rep.AnimalType,
		Location:     rep.Location,
		HealthStatus: rep.HealthStatus,
		ContactName:  rep.ContactName,
		ContactPhone: rep.ContactPhone,
		Description:  rep.Description,
		PhotoRef:     rep.PhotoRef,
		CreatedAt:    e.SubmittedAt.UTC(),
	}
	if !rec.Anonymous {
		rec.UserID = e.Sender.ID
		rec.ChatID = e.ChatID
		rec.Username = e.Sender.Username
	}
	return rec
}
