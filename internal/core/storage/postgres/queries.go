package postgres

// SQL queries for the cluster registry and host component state.

const (
	// queryResolveClusterName looks up a cluster's display name.
	queryResolveClusterName = `
		SELECT cluster_name
		FROM clusters
		WHERE cluster_id = $1
	`

	// queryUpsertComponentState records the latest state of a host component.
	// Rows are keyed by (cluster_id, service_name, component_name, host_id).
	// Nothing is written for a cluster missing from the registry, and an older
	// report (earlier updated_at) never overwrites a newer one.
	queryUpsertComponentState = `
		INSERT INTO host_component_state (
			cluster_id, service_name, component_name, host_id,
			category, state, updated_at
		)
		SELECT $1::bigint, $2::text, $3::text, $4::bigint, $5::text, $6::text, $7::timestamptz
		WHERE EXISTS (SELECT 1 FROM clusters WHERE cluster_id = $1::bigint)
		ON CONFLICT (cluster_id, service_name, component_name, host_id)
		DO UPDATE SET
			category   = EXCLUDED.category,
			state      = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
		WHERE host_component_state.updated_at <= EXCLUDED.updated_at
	`

	// queryListServiceComponents reads every component of one service, addressed
	// by cluster name the way state strategies see it.
	queryListServiceComponents = `
		SELECT
			hcs.cluster_id, hcs.service_name, hcs.component_name, hcs.host_id,
			hcs.category, hcs.state, hcs.updated_at
		FROM host_component_state hcs
		JOIN clusters c ON c.cluster_id = hcs.cluster_id
		WHERE c.cluster_name = $1
		  AND hcs.service_name = $2
		ORDER BY hcs.component_name ASC, hcs.host_id ASC
	`
)
