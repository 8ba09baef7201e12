package repository

import (
	"context"
	"database/sql"
	"time"
)

// EventRepo reads event reference data.  Events are written by catalog
// tooling outside this service, so the repository is read-only.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// EventDetail is the public projection of an event with its optional
// catalog links resolved to names.  It is returned by GetByID and
// rendered directly by the HTTP layer.
type EventDetail struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	PriceCents    uint32    `json:"price_cents"`
	CategoryName  *string   `json:"category,omitempty"`
	VenueName     *string   `json:"venue,omitempty"`
	OrganizerName *string   `json:"organizer,omitempty"`
}

// GetByID loads one event together with its category, venue and
// organizer names.  It returns sql.ErrNoRows when the event does not
// exist.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (*EventDetail, error) {
	const q = `SELECT e.id, e.title, e.description, e.starts_at, e.ends_at, e.price_cents,
                      c.name, v.name, o.name
               FROM events e
               LEFT JOIN categories c ON c.id = e.category_id
               LEFT JOIN venues v     ON v.id = e.venue_id
               LEFT JOIN organizers o ON o.id = e.organizer_id
               WHERE e.id = ?`
	var det EventDetail
	var catName, venName, orgName sql.NullString
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&det.ID, &det.Title, &det.Description, &det.StartsAt, &det.EndsAt, &det.PriceCents,
		&catName, &venName, &orgName,
	)
	if err != nil {
		return nil, err
	}
	if catName.Valid {
		det.CategoryName = &catName.String
	}
	if venName.Valid {
		det.VenueName = &venName.String
	}
	if orgName.Valid {
		det.OrganizerName = &orgName.String
	}
	return &det, nil
}

// EventInfo carries the fields the booking core needs from an event.
type EventInfo struct {
	ID         uint64
	Title      string
	PriceCents uint32
	StartsAt   time.Time
	EndsAt     time.Time
}

// GetInfo returns the booking-relevant slice of an event: title, base
// price and schedule.  Returns sql.ErrNoRows when absent.
func (r *EventRepo) GetInfo(ctx context.Context, eventID uint64) (*EventInfo, error) {
	const q = `SELECT id, title, price_cents, starts_at, ends_at FROM events WHERE id = ?`
	var info EventInfo
	if err := r.db.QueryRowContext(ctx, q, eventID).Scan(&info.ID, &info.Title, &info.PriceCents, &info.StartsAt, &info.EndsAt); err != nil {
		return nil, err
	}
	return &info, nil
}
