// Package valkeytest runs a throwaway ValKey container for tests.
package valkeytest

import (
	"context"
	"net"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	valkeycontainer "github.com/testcontainers/testcontainers-go/modules/valkey"
)

const image = "valkey/valkey:8-alpine"

// Instance is a running ValKey container.
type Instance struct {
	Client valkey.Client
	Port   nat.Port
}

// Address returns the host:port the container listens on.
func (i Instance) Address() string {
	return net.JoinHostPort("localhost", i.Port.Port())
}

// Start runs a ValKey container for the lifetime of tb. The client and the
// container are released through tb.Cleanup.
func Start(tb testing.TB) Instance {
	tb.Helper()

	container, err := valkeycontainer.Run(tb.Context(), image)
	require.NoError(tb, err, "starting valkey container")

	tb.Cleanup(func() {
		// tb.Context is already done when cleanups run.
		if err := container.Terminate(context.Background()); err != nil {
			tb.Logf("terminating valkey container: %v", err)
		}
	})

	port, err := container.MappedPort(tb.Context(), nat.Port("6379/tcp"))
	require.NoError(tb, err, "mapping valkey port")

	inst := Instance{Port: port}

	inst.Client, err = valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{inst.Address()},
	})
	require.NoError(tb, err, "connecting to valkey")
	tb.Cleanup(inst.Client.Close)

	return inst
}
