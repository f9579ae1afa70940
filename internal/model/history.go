package model

import (
	"time"

	"gorm.io/gorm"
)

// Run is one row of the append-only run history, keyed by job name and
// start time. The JSON status document keeps only the latest result per
// job; this table keeps all of them.
type Run struct {
	gorm.Model
	JobName     string   `gorm:"not null;index"`
	Source      string   `gorm:"not null"`
	Destination string   `gorm:"not null"`
	State       RunState `gorm:"not null"`
	Success     bool     `gorm:"not null"`
	ReturnCode  int
	Duration    float64
	ErrMsg      string
	StartedAt   time.Time `gorm:"not null;index"`
}
