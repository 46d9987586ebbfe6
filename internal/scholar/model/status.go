package model

import (
	"fmt"
	"time"
)

// Status is a per-user mark on a scholarship. A (user, scholarship) pair
// holds at most one status; applied/hidden exclusivity is enforced by the
// API layer, not here.
type Status string

const (
	StatusApplied Status = "applied"
	StatusHidden  Status = "hidden"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusApplied, StatusHidden:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// UserScholarshipStatus is one status record, keyed by the composite of user
// and scholarship id.
type UserScholarshipStatus struct {
	UserID        string    `bson:"user_id" json:"user_id"`
	ScholarshipID string    `bson:"scholarship_id" json:"scholarship_id"`
	Status        Status    `bson:"status" json:"status"`
	MarkedAt      time.Time `bson:"marked_at" json:"marked_at"`
}
