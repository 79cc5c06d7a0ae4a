package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/botirk38/ragvec/types"
)

func TestFactory_NewStore(t *testing.T) {
	factory := &Factory{}
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := factory.NewStore(ctx, types.StoreMemory, types.StoreConfig{})
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		defer func() { _ = store.Close() }()
	})

	t.Run("chromem", func(t *testing.T) {
		store, err := factory.NewStore(ctx, types.StoreChromem, types.StoreConfig{Collection: "test"})
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		defer func() { _ = store.Close() }()
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := factory.NewStore(ctx, "cassandra", types.StoreConfig{})
		if !errors.Is(err, ErrUnsupportedStore) {
			t.Fatalf("expected ErrUnsupportedStore, got %v", err)
		}
	})
}

func TestProbe(t *testing.T) {
	t.Run("in-process kinds always available", func(t *testing.T) {
		avail := Probe(context.Background(), nil, types.StoreMemory, types.StoreChromem)

		if !avail.Enabled(types.StoreMemory) {
			t.Error("memory store should be available")
		}
		if !avail.Enabled(types.StoreChromem) {
			t.Error("chromem store should be available")
		}
		if len(avail.Unavailable) != 0 {
			t.Errorf("expected no unavailable stores, got %v", avail.Unavailable)
		}
	})

	t.Run("unreachable redis is reported, not fatal", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		configs := map[types.StoreType]types.StoreConfig{
			// Port 1 is never a redis server
			types.StoreRedis: {ConnectionString: "127.0.0.1:1"},
		}
		avail := Probe(ctx, configs, types.StoreMemory, types.StoreRedis)

		if !avail.Enabled(types.StoreMemory) {
			t.Error("memory store should survive a failed redis probe")
		}
		if avail.Enabled(types.StoreRedis) {
			t.Error("unreachable redis should be disabled")
		}

		reason := avail.Reason(types.StoreRedis)
		if reason == nil {
			t.Fatal("expected a typed unavailability reason")
		}
		if reason.Store != types.StoreRedis {
			t.Errorf("reason names store %q", reason.Store)
		}
	})

	t.Run("unconfigured milvus is reported", func(t *testing.T) {
		avail := Probe(context.Background(), nil, types.StoreMilvus)

		if avail.Enabled(types.StoreMilvus) {
			t.Error("milvus without an address should be disabled")
		}
		if avail.Reason(types.StoreMilvus) == nil {
			t.Error("expected a typed unavailability reason")
		}
	})

	t.Run("unknown kind is reported", func(t *testing.T) {
		avail := Probe(context.Background(), nil, types.StoreType("cassandra"))

		reason := avail.Reason(types.StoreType("cassandra"))
		if reason == nil {
			t.Fatal("expected unavailability reason for unknown kind")
		}
		if !errors.Is(reason, ErrUnsupportedStore) {
			t.Errorf("expected ErrUnsupportedStore, got %v", reason)
		}
	})

	t.Run("no kinds probes the whole closed set", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		avail := Probe(ctx, nil)

		total := len(avail.Available) + len(avail.Unavailable)
		if total != len(types.AllStoreTypes()) {
			t.Errorf("expected %d kinds probed, got %d", len(types.AllStoreTypes()), total)
		}
	})
}
