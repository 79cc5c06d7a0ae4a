// Package stores creates vector store adapters from a closed set of
// backend kinds and probes, once at startup, which of those kinds are
// actually reachable.
package stores

import (
	"context"
	"errors"

	"github.com/botirk38/ragvec/stores/embedded"
	"github.com/botirk38/ragvec/stores/inmemory"
	"github.com/botirk38/ragvec/stores/remote"
	"github.com/botirk38/ragvec/types"
)

var ErrUnsupportedStore = errors.New("unsupported store type")

// Factory creates vector stores based on type and configuration.
type Factory struct{}

// NewStore creates a new vector store of the specified type. The set of
// kinds is closed: anything outside it is ErrUnsupportedStore, never a
// runtime dispatch surprise.
func (f *Factory) NewStore(ctx context.Context, storeType types.StoreType, config types.StoreConfig) (types.VectorStore, error) {
	switch storeType {
	case types.StoreMemory:
		return inmemory.NewMemoryStore(config)
	case types.StoreChromem:
		return embedded.NewChromemStore(config)
	case types.StoreRedis:
		return remote.NewRedisStore(ctx, config)
	case types.StoreMilvus:
		return remote.NewMilvusStore(ctx, config)
	default:
		return nil, ErrUnsupportedStore
	}
}

// Availability is the outcome of probing a set of store kinds: the static
// enabled set consulted before any dispatch, plus a typed reason for every
// kind that is out.
type Availability struct {
	Available   []types.StoreType
	Unavailable map[types.StoreType]*types.UnavailableError
}

// Enabled reports whether a store kind survived the probe.
func (a Availability) Enabled(storeType types.StoreType) bool {
	for _, st := range a.Available {
		if st == storeType {
			return true
		}
	}
	return false
}

// Reason returns the probe failure for a disabled kind, or nil.
func (a Availability) Reason(storeType types.StoreType) *types.UnavailableError {
	return a.Unavailable[storeType]
}

// Probe checks each requested store kind once and returns the resulting
// availability. In-process kinds are always available; networked kinds
// must answer a connection check. Unknown kinds are reported as
// unavailable with ErrUnsupportedStore.
func Probe(ctx context.Context, configs map[types.StoreType]types.StoreConfig, kinds ...types.StoreType) Availability {
	if len(kinds) == 0 {
		kinds = types.AllStoreTypes()
	}

	avail := Availability{
		Unavailable: make(map[types.StoreType]*types.UnavailableError),
	}

	for _, kind := range kinds {
		config := configs[kind]

		var err error
		switch kind {
		case types.StoreMemory, types.StoreChromem:
			// In-process, nothing to reach
		case types.StoreRedis:
			err = remote.PingRedis(ctx, config)
		case types.StoreMilvus:
			err = remote.PingMilvus(ctx, config)
		default:
			err = ErrUnsupportedStore
		}

		if err != nil {
			avail.Unavailable[kind] = &types.UnavailableError{Store: kind, Reason: err}
			continue
		}
		avail.Available = append(avail.Available, kind)
	}

	return avail
}
