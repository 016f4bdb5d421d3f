package postgres

import (
	"fmt"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
	"github.com/aevon-lab/servicestate/internal/core/storage"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanComponentRow scans a host_component_state row.
// A state value the enum does not know is surfaced as UNKNOWN rather than failing
// the whole read, so one bad row cannot block a service's evaluation.
func scanComponentRow(row scanner) (storage.ComponentState, error) {
	var (
		cs       storage.ComponentState
		category string
		rawState string
	)

	err := row.Scan(
		&cs.ClusterID,
		&cs.ServiceName,
		&cs.ComponentName,
		&cs.HostID,
		&category,
		&rawState,
		&cs.UpdatedAt,
	)
	if err != nil {
		return storage.ComponentState{}, fmt.Errorf("failed to scan component row: %w", err)
	}

	cs.Category = v1.ComponentCategory(category)
	if parsed, err := state.ParseServiceState(rawState); err == nil {
		cs.State = parsed
	} else {
		cs.State = state.Unknown
	}

	return cs, nil
}
