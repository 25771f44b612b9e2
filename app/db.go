package app

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"pager/models"
)

const journalQueue = 64

// PageJournal persists device events to the badge_events table. Writes happen
// on a background goroutine; events are dropped when the queue is full so the
// scheduler loop never waits on the database.
type PageJournal struct {
	db     *sql.DB
	queue  chan models.Event
	done   chan struct{}
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

func NewPageJournal(db *sql.DB, logger *log.Logger) *PageJournal {
	if logger == nil {
		logger = log.Default()
	}
	j := &PageJournal{
		db:     db,
		queue:  make(chan models.Event, journalQueue),
		done:   make(chan struct{}),
		logger: logger,
	}
	go j.writeLoop()
	return j
}

// Record queues ev for writing. Events recorded after Close are dropped.
func (j *PageJournal) Record(ev models.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		j.logger.Printf("ERROR: Journal closed, dropped %s event", ev.Kind)
		return
	}
	select {
	case j.queue <- ev:
	default:
		j.logger.Printf("ERROR: Journal queue full, dropped %s event", ev.Kind)
	}
}

// Close flushes queued events and stops the writer.
func (j *PageJournal) Close() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()
	<-j.done
}

func (j *PageJournal) writeLoop() {
	defer close(j.done)
	for ev := range j.queue {
		if err := InsertEvent(j.db, ev); err != nil {
			j.logger.Printf("ERROR: Failed to journal %s event: %v", ev.Kind, err)
		}
	}
}

func InsertEvent(db *sql.DB, ev models.Event) error {
	query := `
        INSERT INTO badge_events (uuid, session, device_id, kind, response, uptime_ms, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.Exec(query, uuid.New(), ev.Session, ev.DeviceID, ev.Kind,
		int(ev.Response), ev.Uptime.Milliseconds(), ev.At)
	if err != nil {
		return fmt.Errorf("failed to insert badge event: %w", err)
	}
	return nil
}

// PageOutcome is a resolved page read back from the journal.
type PageOutcome struct {
	UUID     uuid.UUID
	DeviceID string
	Kind     string
	Response models.PageResponse
}

func GetPageOutcomes(db *sql.DB, deviceID string, limit int) ([]*PageOutcome, error) {
	query := `
        SELECT uuid, device_id, kind, response
        FROM badge_events
        WHERE device_id = $1 AND kind IN ($2, $3, $4)
        ORDER BY created_at DESC
        LIMIT $5`

	rows, err := db.Query(query, deviceID,
		models.EventPageAccepted, models.EventPageRefused, models.EventPageCancelled, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*PageOutcome
	for rows.Next() {
		var o PageOutcome
		var resp int
		if err := rows.Scan(&o.UUID, &o.DeviceID, &o.Kind, &resp); err != nil {
			return nil, fmt.Errorf("failed to scan page outcome: %w", err)
		}
		o.Response = models.PageResponse(resp)
		result = append(result, &o)
	}

	return result, rows.Err()
}
