package buildstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/buildstore"
	"github.com/specialistvlad/stepproxy/internal/inmemorystore"
	"github.com/specialistvlad/stepproxy/internal/sqlitestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every Store implementation must pass the same contract.
func TestStoreContract(t *testing.T) {
	impls := map[string]func(t *testing.T) buildstore.Store{
		"inmemory": func(t *testing.T) buildstore.Store { return inmemorystore.New() },
		"sqlite": func(t *testing.T) buildstore.Store {
			s, err := sqlitestore.Open(t.TempDir() + "/history.db")
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range impls {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			ctx := context.Background()

			n, err := s.NextNumber(ctx, "app")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			n, err = s.NextNumber(ctx, "app")
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			n, err = s.NextNumber(ctx, "lib")
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
			first := buildstore.Record{
				ID: uuid.New(), Project: "app", Number: 1, Result: build.ResultSuccess,
				Parameters: map[string]string{"BRANCH": "main"},
				StartedAt:  start, Duration: 1500 * time.Millisecond,
			}
			second := buildstore.Record{
				ID: uuid.New(), Project: "app", Number: 2, Result: build.ResultFailure,
				StartedAt: start.Add(time.Minute), Error: "step shell.test failed",
			}
			other := buildstore.Record{ID: uuid.New(), Project: "lib", Number: 1, Result: build.ResultAborted, StartedAt: start}
			for _, rec := range []buildstore.Record{first, second, other} {
				require.NoError(t, s.Save(ctx, rec))
			}

			got, err := s.List(ctx, "app")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, second.ID, got[0].ID)
			assert.Equal(t, build.ResultFailure, got[0].Result)
			assert.Equal(t, "step shell.test failed", got[0].Error)
			assert.Equal(t, first.ID, got[1].ID)
			assert.Equal(t, map[string]string{"BRANCH": "main"}, got[1].Parameters)
			assert.Equal(t, 1500*time.Millisecond, got[1].Duration)
			assert.True(t, start.Equal(got[1].StartedAt))

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			first.Result = build.ResultAborted
			require.NoError(t, s.Save(ctx, first))
			got, err = s.List(ctx, "app")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, build.ResultAborted, got[1].Result)

			none, err := s.List(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}
