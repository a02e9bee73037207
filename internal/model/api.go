package model

import "github.com/haojie06/dallebot/internal/ledger"

type StatsHTTPResponse struct {
	Status string `json:"status"` // completed, failed

	Message string `json:"message,omitempty"`

	Stats *ledger.Snapshot `json:"stats,omitempty"`
}

type HealthHTTPResponse struct {
	Status string `json:"status"`

	LedgerEnabled bool `json:"ledger_enabled"`
}
