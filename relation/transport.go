package relation

import "context"

// Transport fetches remote resource data. Proxies never build URLs or
// queries themselves; they only ask the transport to fetch a resource given
// its identity. Implementations live under transport/; errors they return
// are propagated to the resolving caller verbatim.
type Transport interface {
	// FetchResource fetches the full record for one resource
	FetchResource(ctx context.Context, resource string, identity Identity) (map[string]any, error)

	// FetchCollection fetches the records of a named collection belonging
	// to an owning resource. A nil result means the collection is absent
	// remotely, which materializes as empty rather than an error.
	FetchCollection(ctx context.Context, ownerResource string, owner Identity, field string) ([]map[string]any, error)
}
