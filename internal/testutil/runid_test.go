package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netmut/internal/engine"
	"github.com/roach88/netmut/internal/netlist"
)

func TestFixedRunIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedRunIDGenerator("run-123")

	assert.Equal(t, "run-123", gen.Generate())
	assert.Equal(t, "run-123", gen.Generate())
	assert.Equal(t, "run-123", gen.Generate())
}

func TestFixedRunIDGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedRunIDGenerator("")

	assert.Equal(t, "test-run-default", gen.Generate())
}

func TestFixedRunIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedRunIDGenerator("thread-safe-id")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe-id", gen.Generate())
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestFixedRunIDGenerator_DrivesEngine(t *testing.T) {
	d := netlist.NewDesign()
	d.MustAddCell("A", "LUT4")

	gen := NewFixedRunIDGenerator("fixed")
	eng := engine.New(d, engine.WithRunIDGenerator(gen))

	first, err := eng.Apply(context.Background(), nil)
	require.NoError(t, err)
	second, err := eng.Apply(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "fixed", first.RunID)
	assert.Equal(t, "fixed", second.RunID)
}
