package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Medicine is a prophylaxis drug tracked for a chat.
type Medicine struct {
	ID              uuid.UUID
	ChatID          int64
	Name            string
	IntervalDays    int        // days between doses, > 0
	CurrentStock    float64    // pills remaining
	LastStockRefill *time.Time // UTC, nullable
	CreatedAt       time.Time  // UTC
}

// Stock returns the floored pill count. Negative stock reads as zero.
func (m Medicine) Stock() int {
	s := int(math.Floor(m.CurrentStock))
	if s < 0 {
		return 0
	}
	return s
}

// RemainingDoseUnits is the number of days the remaining pills cover.
func (m Medicine) RemainingDoseUnits() int {
	return m.Stock() * m.IntervalDays
}

// Weekly reports whether the medicine is taken once a week.
func (m Medicine) Weekly() bool {
	return m.IntervalDays == 7
}

// Preset describes a medicine the setup screen can create.
type Preset struct {
	Key          string
	Name         string
	IntervalDays int
}

// Presets lists the supported prophylaxis drugs.
var Presets = []Preset{
	{Key: "malarone", Name: "Malarone", IntervalDays: 1},
	{Key: "doxycycline", Name: "Doxycycline", IntervalDays: 1},
	{Key: "mefloquine", Name: "Mefloquine", IntervalDays: 7},
}

// PresetByKey looks up a preset by its key.
func PresetByKey(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// NewMedicine builds a fresh medicine record from a preset.
func NewMedicine(chatID int64, p Preset, stock int, now time.Time) Medicine {
	now = now.UTC()
	return Medicine{
		ID:              uuid.New(),
		ChatID:          chatID,
		Name:            p.Name,
		IntervalDays:    p.IntervalDays,
		CurrentStock:    float64(stock),
		LastStockRefill: &now,
		CreatedAt:       now,
	}
}
