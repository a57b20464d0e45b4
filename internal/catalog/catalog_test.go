package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"strategystore/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func newTestCatalog() *Catalog {
	return New(WithClock(stepClock(time.UnixMilli(1_700_000_000_000))))
}

func payload(id, goal, extra string) []byte {
	body := fmt.Sprintf(`{"id":%q,"goal":%q,"chains":["near"],"protocols":["ref"],"steps":[{"action":"swap","protocol":"ref","asset":"USDC","amount":"10.5"}]`, id, goal)
	if extra != "" {
		body += "," + extra
	}
	return []byte(body + "}")
}

func assertCountMatches(t *testing.T, c *Catalog) {
	t.Helper()
	assert.Equal(t, uint64(len(c.ListAll())), c.Stats().Count)
}

func TestCatalogScenario(t *testing.T) {
	c := newTestCatalog()

	msg, err := c.CreateMinimal("alice", "s1", "grow savings")
	require.NoError(t, err)
	assert.Equal(t, "Strategy 's1' stored successfully!", msg)

	rec, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "alice", rec.Creator)
	assert.Equal(t, "medium", rec.RiskLevel)

	_, err = c.Update("bob", payload("s1", "grow savings", `"risk_level":"high"`))
	assert.ErrorIs(t, err, ErrForbidden)

	msg, err = c.Update("alice", payload("s1", "grow savings", `"risk_level":"high"`))
	require.NoError(t, err)
	assert.Equal(t, "Strategy 's1' updated successfully!", msg)

	rec, ok = c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "high", rec.RiskLevel)
	assert.Equal(t, "alice", rec.Creator)

	msg, err = c.Delete("alice", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Strategy 's1' deleted successfully! Total strategies: 0", msg)
	assert.Equal(t, uint64(0), c.Stats().Count)

	_, ok = c.Get("s1")
	assert.False(t, ok)
}

func TestCreateMinimal(t *testing.T) {
	t.Run("builds a bare record", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "grow savings")
		require.NoError(t, err)

		rec, ok := c.Get("s1")
		require.True(t, ok)
		assert.Equal(t, "s1", rec.ID)
		assert.Equal(t, "grow savings", rec.Goal)
		assert.Equal(t, models.StringList{}, rec.Chains)
		assert.Equal(t, models.StringList{}, rec.Protocols)
		assert.Equal(t, models.StepList{}, rec.Steps)
		assert.Nil(t, rec.EstimatedApy)
		assert.Nil(t, rec.EstimatedTvl)
		assert.Nil(t, rec.Confidence)
		assert.Nil(t, rec.Reasoning)
		assert.Nil(t, rec.Warnings)
		assert.Equal(t, uint64(1_700_000_000_000), rec.CreatedAt)
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "", "goal")
		require.ErrorIs(t, err, ErrMissingField)

		var ce *Error
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "id", ce.Field)
		assert.Equal(t, uint64(0), c.Count())
	})

	t.Run("existing id is overwritten without growing the count", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "first")
		require.NoError(t, err)
		_, err = c.CreateMinimal("bob", "s1", "second")
		require.NoError(t, err)

		rec, _ := c.Get("s1")
		assert.Equal(t, "second", rec.Goal)
		assert.Equal(t, "bob", rec.Creator)
		assert.Equal(t, uint64(1), c.Count())
		assertCountMatches(t, c)
	})
}

func TestCreateFull(t *testing.T) {
	t.Run("stores the decoded record and reports the total", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s0", "other")
		require.NoError(t, err)

		msg, err := c.CreateFull("alice", payload("s1", "yield", `"estimated_apy":7.5,"warnings":["il risk"]`))
		require.NoError(t, err)
		assert.Equal(t, "Complete strategy 's1' stored successfully! Total strategies: 2", msg)

		rec, ok := c.Get("s1")
		require.True(t, ok)
		assert.Equal(t, models.StringList{"near"}, rec.Chains)
		require.Len(t, rec.Steps, 1)
		assert.Equal(t, "swap", rec.Steps[0].Action)
		require.NotNil(t, rec.Steps[0].Amount)
		assert.Equal(t, "10.5", *rec.Steps[0].Amount)
		require.NotNil(t, rec.EstimatedApy)
		assert.Equal(t, 7.5, *rec.EstimatedApy)
		assert.Equal(t, models.StringList{"il risk"}, rec.Warnings)
	})

	t.Run("client supplied owner fields are ignored", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateFull("alice", payload("s1", "yield", `"creator":"mallory","created_at":1`))
		require.NoError(t, err)

		rec, _ := c.Get("s1")
		assert.Equal(t, "alice", rec.Creator)
		assert.Equal(t, uint64(1_700_000_000_000), rec.CreatedAt)
	})

	t.Run("malformed payload leaves the catalog untouched", func(t *testing.T) {
		c := newTestCatalog()
		raw := []byte(`{"id": "s1", "goal": `)
		_, err := c.CreateFull("alice", raw)
		require.ErrorIs(t, err, ErrMalformedInput)

		var ce *Error
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, string(raw), ce.Payload)
		assert.Error(t, ce.Err)
		assert.Equal(t, uint64(0), c.Count())
	})

	t.Run("empty id is a missing field", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateFull("alice", payload("", "yield", ""))
		assert.ErrorIs(t, err, ErrMissingField)
		assert.Equal(t, uint64(0), c.Count())
	})
}

func TestUpdate(t *testing.T) {
	t.Run("non creator is forbidden and nothing changes", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateFull("alice", payload("s1", "yield", `"reasoning":"diversify"`))
		require.NoError(t, err)
		before, _ := c.Get("s1")

		_, err = c.Update("bob", payload("s1", "hijacked", ""))
		require.ErrorIs(t, err, ErrForbidden)

		after, _ := c.Get("s1")
		if diff := cmp.Diff(before, after); diff != "" {
			t.Errorf("record changed after forbidden update (-before +after):\n%s", diff)
		}
	})

	t.Run("creator keeps owner fields even when payload forges them", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "grow")
		require.NoError(t, err)
		before, _ := c.Get("s1")

		_, err = c.Update("alice", payload("s1", "grow more", `"creator":"bob","created_at":42`))
		require.NoError(t, err)

		after, _ := c.Get("s1")
		assert.Equal(t, "grow more", after.Goal)
		assert.Equal(t, before.Creator, after.Creator)
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
	})

	t.Run("omitted optional fields are cleared", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateFull("alice", payload("s1", "yield", `"confidence":0.8,"reasoning":"x","warnings":["w"]`))
		require.NoError(t, err)

		_, err = c.Update("alice", payload("s1", "yield", ""))
		require.NoError(t, err)

		rec, _ := c.Get("s1")
		assert.Nil(t, rec.Confidence)
		assert.Nil(t, rec.Reasoning)
		assert.Nil(t, rec.Warnings)
		assert.Equal(t, "medium", rec.RiskLevel)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.Update("alice", payload("missing", "yield", ""))
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "strategy 'missing' not found", err.Error())
	})

	t.Run("empty id is a missing field", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "grow")
		require.NoError(t, err)

		_, err = c.Update("alice", payload("", "yield", ""))
		require.ErrorIs(t, err, ErrMissingField)
		assert.NotErrorIs(t, err, ErrNotFound)
		assertCountMatches(t, c)
	})

	t.Run("count is unchanged", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "grow")
		require.NoError(t, err)
		_, err = c.Update("alice", payload("s1", "grow", ""))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), c.Count())
	})
}

func TestDelete(t *testing.T) {
	t.Run("non creator is forbidden", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "grow")
		require.NoError(t, err)

		_, err = c.Delete("bob", "s1")
		require.ErrorIs(t, err, ErrForbidden)

		_, ok := c.Get("s1")
		assert.True(t, ok)
		assert.Equal(t, uint64(1), c.Count())
	})

	t.Run("creator removes the record", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.CreateMinimal("alice", "s1", "grow")
		require.NoError(t, err)
		_, err = c.CreateMinimal("alice", "s2", "grow")
		require.NoError(t, err)
		before := c.Stats().Count

		msg, err := c.Delete("alice", "s1")
		require.NoError(t, err)
		assert.Equal(t, "Strategy 's1' deleted successfully! Total strategies: 1", msg)
		assert.Equal(t, before-1, c.Stats().Count)

		_, ok := c.Get("s1")
		assert.False(t, ok)
	})

	t.Run("missing id never underflows the count", func(t *testing.T) {
		c := newTestCatalog()
		_, err := c.Delete("alice", "s1")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, uint64(0), c.Count())

		_, err = c.CreateMinimal("alice", "s1", "grow")
		require.NoError(t, err)
		_, err = c.Delete("alice", "s1")
		require.NoError(t, err)
		_, err = c.Delete("alice", "s1")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, uint64(0), c.Count())
	})
}

func TestListing(t *testing.T) {
	c := newTestCatalog()
	for i, owner := range []string{"alice", "bob", "alice", "carol"} {
		_, err := c.CreateMinimal(owner, fmt.Sprintf("s%d", i), "goal")
		require.NoError(t, err)
	}

	t.Run("list all keeps insertion order", func(t *testing.T) {
		var ids []string
		for _, rec := range c.ListAll() {
			ids = append(ids, rec.ID)
		}
		assert.Equal(t, []string{"s0", "s1", "s2", "s3"}, ids)
	})

	t.Run("list by creator is the matching subset of list all", func(t *testing.T) {
		for _, identity := range []string{"alice", "bob", "carol", "nobody"} {
			var want []models.StrategyRecord
			for _, rec := range c.ListAll() {
				if rec.Creator == identity {
					want = append(want, rec)
				}
			}
			got := c.ListByCreator(identity)
			assert.Len(t, got, len(want), identity)
			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID)
			}
		}
		assert.Empty(t, c.ListByCreator("nobody"))
		assert.NotNil(t, c.ListByCreator("nobody"))
	})

	t.Run("returned records are copies", func(t *testing.T) {
		recs := c.ListAll()
		recs[0].Goal = "tampered"
		recs[0].Chains = append(recs[0].Chains, "x")

		rec, _ := c.Get("s0")
		assert.Equal(t, "goal", rec.Goal)
		assert.Empty(t, rec.Chains)
	})
}

func TestCountAlwaysMatchesEntries(t *testing.T) {
	c := newTestCatalog()
	ops := []func() error{
		func() error { _, err := c.CreateMinimal("alice", "a", "g"); return err },
		func() error { _, err := c.CreateMinimal("alice", "a", "g2"); return err },
		func() error { _, err := c.CreateFull("bob", payload("b", "g", "")); return err },
		func() error { _, err := c.CreateFull("bob", payload("b", "g", "")); return err },
		func() error { _, err := c.Update("bob", payload("b", "g3", "")); return err },
		func() error { _, err := c.Delete("alice", "b"); return err },
		func() error { _, err := c.Delete("alice", "a"); return err },
		func() error { _, err := c.Delete("bob", "b"); return err },
	}
	for _, op := range ops {
		_ = op()
		assertCountMatches(t, c)
	}
	assert.Equal(t, uint64(0), c.Count())
}

func TestStats(t *testing.T) {
	c := newTestCatalog()
	assert.Equal(t, Stats{Count: 0, Summary: "Strategy Storage - Total strategies: 0"}, c.Stats())

	_, err := c.CreateMinimal("alice", "s1", "grow")
	require.NoError(t, err)
	assert.Equal(t, "Strategy Storage - Total strategies: 1", c.Stats().Summary)
}

func TestRestore(t *testing.T) {
	c := newTestCatalog()
	_, err := c.CreateMinimal("alice", "old", "gone after restore")
	require.NoError(t, err)

	draft := models.StrategyDraft{ID: "s1", Goal: "kept", RiskLevel: "low"}
	c.Restore([]models.StrategyRecord{
		models.NewStrategyRecord(draft, "alice", 5),
		models.NewStrategyRecord(models.StrategyDraft{ID: "s2", Goal: "x"}, "bob", 6),
		models.NewStrategyRecord(models.StrategyDraft{ID: "s1", Goal: "last wins"}, "alice", 7),
	})

	assert.Equal(t, uint64(2), c.Count())
	_, ok := c.Get("old")
	assert.False(t, ok)

	rec, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "last wins", rec.Goal)
	assert.Equal(t, uint64(7), rec.CreatedAt)
	assertCountMatches(t, c)
}

type denyAll struct{}

func (denyAll) Authorize(models.StrategyRecord, string) bool { return false }

func TestCustomAuthorizer(t *testing.T) {
	c := New(WithAuthorizer(denyAll{}))
	_, err := c.CreateMinimal("alice", "s1", "grow")
	require.NoError(t, err)

	_, err = c.Delete("alice", "s1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestRejectsNULCharacters(t *testing.T) {
	c := newTestCatalog()

	_, err := c.CreateMinimal("alice", "s\x001", "grow")
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = c.CreateFull("alice", []byte(`{"id":"s1","goal":"a\u0000b","chains":[],"protocols":[],"steps":[]}`))
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "goal")

	_, err = c.CreateFull("alice", []byte(`{"id":"s1","goal":"g","chains":["ne\u0000ar"],"protocols":[],"steps":[]}`))
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "chains[0]")

	_, err = c.CreateMinimal("alice", "s1", "grow")
	require.NoError(t, err)
	_, err = c.Update("alice", payload("s1", "g", `"reasoning":"x\u0000"`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	rec, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "grow", rec.Goal)
	assert.Equal(t, uint64(1), c.Count())
}

func TestSnapshot(t *testing.T) {
	c := newTestCatalog()
	_, _ = c.CreateMinimal("alice", "a", "g")
	_, _ = c.CreateMinimal("bob", "b", "g")

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	snap[0].Goal = "mutated"

	rec, _ := c.Get("a")
	assert.Equal(t, "g", rec.Goal)
}

func TestCheckpointRollback(t *testing.T) {
	seed := func(t *testing.T) *Catalog {
		t.Helper()
		c := newTestCatalog()
		for _, id := range []string{"a", "b", "c"} {
			_, err := c.CreateMinimal("alice", id, "goal "+id)
			require.NoError(t, err)
		}
		return c
	}
	ids := func(c *Catalog) []string {
		var out []string
		for _, rec := range c.ListAll() {
			out = append(out, rec.ID)
		}
		return out
	}

	t.Run("undo create", func(t *testing.T) {
		c := seed(t)
		cp := c.Checkpoint("d")
		_, err := c.CreateMinimal("alice", "d", "new")
		require.NoError(t, err)

		c.Rollback(cp)
		_, ok := c.Get("d")
		assert.False(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, ids(c))
		assertCountMatches(t, c)
	})

	t.Run("undo update", func(t *testing.T) {
		c := seed(t)
		before, _ := c.Get("b")
		cp := c.Checkpoint("b")
		_, err := c.Update("alice", payload("b", "changed", ""))
		require.NoError(t, err)

		c.Rollback(cp)
		after, _ := c.Get("b")
		if diff := cmp.Diff(before, after); diff != "" {
			t.Errorf("record not restored (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids(c))
	})

	t.Run("undo delete keeps position", func(t *testing.T) {
		c := seed(t)
		cp := c.Checkpoint("b")
		_, err := c.Delete("alice", "b")
		require.NoError(t, err)

		c.Rollback(cp)
		assert.Equal(t, []string{"a", "b", "c"}, ids(c))
		assert.Equal(t, uint64(3), c.Count())
		rec, ok := c.Get("b")
		require.True(t, ok)
		assert.Equal(t, "goal b", rec.Goal)
	})

	t.Run("undo re-create of existing id", func(t *testing.T) {
		c := seed(t)
		cp := c.Checkpoint("a")
		_, err := c.CreateMinimal("bob", "a", "taken over")
		require.NoError(t, err)

		c.Rollback(cp)
		rec, _ := c.Get("a")
		assert.Equal(t, "alice", rec.Creator)
		assert.Equal(t, "goal a", rec.Goal)
		assertCountMatches(t, c)
	})
}
