package adsbus

import (
	"github.com/google/uuid"
)

// Metrics is the ads summary of a tenant over a reporting window.
type Metrics struct {
	OwnerID       uuid.UUID
	Leads         int
	Reach         int64
	Impressions   int64
	Spend         float64
	CostPerResult float64
	Period        string
}
