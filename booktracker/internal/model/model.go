package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

var statusLabels = map[Status]string{
	StatusNotStarted: "Not Started",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// StatusFilter is a Status or StatusAll.
type StatusFilter string

const StatusAll StatusFilter = "ALL"

var ErrUnknownStatus = errors.New("unknown status")

func ParseStatusFilter(s string) (StatusFilter, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == string(StatusAll) {
		return StatusAll, nil
	}
	if !Status(v).Valid() {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
	}
	return StatusFilter(v), nil
}

func (f StatusFilter) Match(s Status) bool {
	return f == StatusAll || f == "" || Status(f) == s
}

func (f StatusFilter) Label() string {
	if f == StatusAll || f == "" {
		return "All Books"
	}
	return Status(f).Label()
}

// StatusOptions lists the filter choices in display order.
func StatusOptions() []StatusFilter {
	opts := []StatusFilter{StatusAll}
	for _, s := range Statuses {
		opts = append(opts, StatusFilter(s))
	}
	return opts
}

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Status    Status    `json:"status"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b Book) NotesText() string {
	if b.Notes == nil {
		return ""
	}
	return *b.Notes
}

type BookRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"required,max=255"`
	Genre  string `json:"genre" validate:"required,max=100"`
	Status Status `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
	Notes  string `json:"notes" validate:"max=1000"`
}

func (r BookRequest) Book(id int64, now time.Time) Book {
	b := Book{
		ID:        id,
		Title:     r.Title,
		Author:    r.Author,
		Genre:     r.Genre,
		Status:    r.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.Notes != "" {
		notes := r.Notes
		b.Notes = &notes
	}
	return b
}
