package game

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
	"github.com/mitchelldurbincs/fogcast/internal/game/events"
	"github.com/mitchelldurbincs/fogcast/internal/game/shadowcast"
	"github.com/mitchelldurbincs/fogcast/internal/testutil"
)

func corridorBoard() *core.Board {
	return testutil.BoardFromRows(
		"#######",
		"#.....#",
		"#######",
	)
}

func newTestEngine(board *core.Board) *Engine {
	return NewEngine(board, EngineConfig{
		DefaultDistance: 10,
		RememberContent: true,
		OccupantOpacity: 0.1,
		Logger:          testutil.NopLogger(),
	})
}

func addObserver(t *testing.T, e *Engine, name string, x, y int) string {
	t.Helper()
	id, err := e.AddObserver(name, core.Coordinate{X: x, Y: y}, 0)
	require.NoError(t, err)
	return id
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(corridorBoard())

	_, err := uuid.Parse(e.WorldID())
	assert.NoError(t, err, "generated world ID should be a UUID")
	assert.NotNil(t, e.EventBus())
	assert.Equal(t, uint64(0), e.Step())
	assert.Empty(t, e.Observers())

	named := NewEngine(corridorBoard(), EngineConfig{WorldID: "world-1", Logger: testutil.NopLogger()})
	assert.Equal(t, "world-1", named.WorldID())
}

func TestEngine_AddObserver(t *testing.T) {
	e := newTestEngine(corridorBoard())

	var added []*events.ObserverAddedEvent
	e.EventBus().SubscribeFunc(events.TypeObserverAdded, func(ev events.Event) {
		added = append(added, ev.(*events.ObserverAddedEvent))
	})

	id := addObserver(t, e, "alice", 1, 1)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	o, err := e.Observer(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", o.Name)
	assert.Equal(t, core.Coordinate{X: 1, Y: 1}, o.Position)
	assert.Equal(t, uint32(10), o.Distance, "zero distance should select the default")

	tile, _ := e.Board().Get(core.Coordinate{X: 1, Y: 1})
	require.Len(t, tile.Occupants, 1)
	assert.Equal(t, core.OccupantObserver, tile.Occupants[0].Kind)
	assert.InDelta(t, 0.1, tile.OpacityTotal(), 1e-9)

	require.Len(t, added, 1)
	assert.Equal(t, id, added[0].ObserverID)
	assert.Equal(t, e.WorldID(), added[0].WorldID())

	custom, err := e.AddObserver("bob", core.Coordinate{X: 3, Y: 1}, 4)
	require.NoError(t, err)
	o, err = e.Observer(custom)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), o.Distance)
}

func TestEngine_AddObserverErrors(t *testing.T) {
	e := newTestEngine(corridorBoard())
	addObserver(t, e, "alice", 1, 1)

	tests := []struct {
		name     string
		observer string
		pos      core.Coordinate
		distance uint32
		want     error
	}{
		{"duplicate name", "alice", core.Coordinate{X: 2, Y: 1}, 0, core.ErrDuplicateObserver},
		{"wall", "bob", core.Coordinate{X: 0, Y: 0}, 0, core.ErrBlocked},
		{"off board", "bob", core.Coordinate{X: 9, Y: 1}, 0, core.ErrInvalidCoordinates},
		{"negative", "bob", core.Coordinate{X: -1, Y: 1}, 0, core.ErrInvalidCoordinates},
		{"distance too large", "bob", core.Coordinate{X: 2, Y: 1}, MaxViewDistance + 1, core.ErrInvalidDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.AddObserver(tt.observer, tt.pos, tt.distance)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, e.Observers(), 1, "failed adds should not register observers")
}

func TestEngine_PassabilityIgnoresOpacity(t *testing.T) {
	board := testutil.BoardFromRows("..#4.")
	require.NoError(t, board.SetTile(core.Coordinate{X: 2, Y: 0}, core.TileWall, 0.3))
	require.NoError(t, board.SetTile(core.Coordinate{X: 3, Y: 0}, core.TileFoliage, 1))
	e := newTestEngine(board)

	_, err := e.AddObserver("alice", core.Coordinate{X: 2, Y: 0}, 0)
	assert.ErrorIs(t, err, core.ErrBlocked, "a see-through wall still blocks")

	bob := addObserver(t, e, "bob", 3, 0)
	_, err = e.MoveObserver(bob, core.Coordinate{X: 2, Y: 0})
	assert.ErrorIs(t, err, core.ErrBlocked)
	_, err = e.MoveObserver(bob, core.Coordinate{X: 4, Y: 0})
	assert.NoError(t, err)
}

func TestEngine_TickObservesEveryObserver(t *testing.T) {
	e := newTestEngine(corridorBoard())
	alice := addObserver(t, e, "alice", 1, 1)
	bob := addObserver(t, e, "bob", 5, 1)

	var completed []*events.ObservationCompletedEvent
	var ticks []*events.TickCompletedEvent
	e.EventBus().SubscribeFunc(events.TypeObservationCompleted, func(ev events.Event) {
		completed = append(completed, ev.(*events.ObservationCompletedEvent))
	})
	e.EventBus().SubscribeFunc(events.TypeTickCompleted, func(ev events.Event) {
		ticks = append(ticks, ev.(*events.TickCompletedEvent))
	})

	changes, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, changes.Has(shadowcast.NewlySeen))
	assert.Equal(t, uint64(1), e.Step())

	require.Len(t, completed, 2)
	assert.Equal(t, alice, completed[0].ObserverID, "observers run in the order they were added")
	assert.Equal(t, bob, completed[1].ObserverID)
	assert.Equal(t, uint64(1), completed[0].Step)
	require.Len(t, ticks, 1)
	assert.Equal(t, 2, ticks[0].Observers)

	grid, err := e.Knowledge(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), grid.Time())
	for x := 1; x <= 5; x++ {
		assert.True(t, grid.IsVisible(core.Coordinate{X: x, Y: 1}), "corridor cell %d should be visible", x)
	}

	cell, ok := grid.Get(core.Coordinate{X: 5, Y: 1})
	require.True(t, ok)
	require.Len(t, cell.Tile.Occupants, 1, "alice should remember bob standing there")
}

func TestEngine_TickWithoutChanges(t *testing.T) {
	e := newTestEngine(corridorBoard())
	addObserver(t, e, "alice", 1, 1)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	var discovered int
	e.EventBus().SubscribeFunc(events.TypeCellsDiscovered, func(events.Event) { discovered++ })

	changes, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, changes.Changed(), "an unchanged world should report no changes, got %s", changes)
	assert.Zero(t, discovered, "nothing new was discovered")
}

func TestEngine_CellsDiscovered(t *testing.T) {
	e := newTestEngine(testutil.BoardFromRows("..#.."))
	alice := addObserver(t, e, "alice", 0, 0)

	var got []*events.CellsDiscoveredEvent
	e.EventBus().SubscribeFunc(events.TypeCellsDiscovered, func(ev events.Event) {
		got = append(got, ev.(*events.CellsDiscoveredEvent))
	})

	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, alice, got[0].ObserverID)
	assert.ElementsMatch(t, []core.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, got[0].Cells)
}

func TestEngine_MoveObserver(t *testing.T) {
	e := newTestEngine(corridorBoard())
	alice := addObserver(t, e, "alice", 1, 1)
	bob := addObserver(t, e, "bob", 5, 1)
	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	var moved []*events.ObserverMovedEvent
	e.EventBus().SubscribeFunc(events.TypeObserverMoved, func(ev events.Event) {
		moved = append(moved, ev.(*events.ObserverMovedEvent))
	})

	_, err = e.MoveObserver(bob, core.Coordinate{X: 4, Y: 1})
	require.NoError(t, err)

	o, err := e.Observer(bob)
	require.NoError(t, err)
	assert.Equal(t, core.Coordinate{X: 4, Y: 1}, o.Position)
	require.Len(t, moved, 1)
	assert.Equal(t, core.Coordinate{X: 5, Y: 1}, moved[0].From)
	assert.Equal(t, core.Coordinate{X: 4, Y: 1}, moved[0].To)

	from, _ := e.Board().Get(core.Coordinate{X: 5, Y: 1})
	to, _ := e.Board().Get(core.Coordinate{X: 4, Y: 1})
	assert.Empty(t, from.Occupants)
	assert.Len(t, to.Occupants, 1)

	changes, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, changes.Has(shadowcast.ContentChanged), "alice should notice bob moved, got %s", changes)

	grid, err := e.Knowledge(alice)
	require.NoError(t, err)
	cell, _ := grid.Get(core.Coordinate{X: 5, Y: 1})
	assert.Empty(t, cell.Tile.Occupants)
}

func TestEngine_MoveObserverErrors(t *testing.T) {
	e := newTestEngine(corridorBoard())
	alice := addObserver(t, e, "alice", 1, 1)

	_, err := e.MoveObserver(alice, core.Coordinate{X: 1, Y: 0})
	assert.ErrorIs(t, err, core.ErrBlocked)

	_, err = e.MoveObserver(alice, core.Coordinate{X: 1, Y: 7})
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)

	_, err = e.MoveObserver("nobody", core.Coordinate{X: 2, Y: 1})
	assert.ErrorIs(t, err, core.ErrUnknownObserver)

	o, err := e.Observer(alice)
	require.NoError(t, err)
	assert.Equal(t, core.Coordinate{X: 1, Y: 1}, o.Position, "failed moves should leave the observer in place")
}

func TestEngine_ObserveBeforeFirstTick(t *testing.T) {
	e := newTestEngine(testutil.BoardFromRows("....."))
	alice := addObserver(t, e, "alice", 2, 0)

	changes, err := e.Observe(alice)
	require.NoError(t, err)
	assert.True(t, changes.Has(shadowcast.NewlySeen))

	grid, err := e.Knowledge(alice)
	require.NoError(t, err)
	assert.Equal(t, 5, grid.KnownCount())

	_, err = e.Observe("nobody")
	assert.ErrorIs(t, err, core.ErrUnknownObserver)
}

func TestEngine_RemoveObserver(t *testing.T) {
	e := newTestEngine(corridorBoard())
	alice := addObserver(t, e, "alice", 1, 1)
	bob := addObserver(t, e, "bob", 2, 1)
	carol := addObserver(t, e, "carol", 3, 1)

	require.NoError(t, e.RemoveObserver(bob))

	names := []string{}
	for _, o := range e.Observers() {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"alice", "carol"}, names)

	tile, _ := e.Board().Get(core.Coordinate{X: 2, Y: 1})
	assert.Empty(t, tile.Occupants)

	_, err := e.Observer(bob)
	assert.ErrorIs(t, err, core.ErrUnknownObserver)
	_, err = e.Knowledge(bob)
	assert.ErrorIs(t, err, core.ErrUnknownObserver)
	assert.ErrorIs(t, e.RemoveObserver(bob), core.ErrUnknownObserver)

	_, err = e.Tick(context.Background())
	require.NoError(t, err)
	for _, id := range []string{alice, carol} {
		grid, err := e.Knowledge(id)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), grid.Time())
	}
}

func TestEngine_TickCancelled(t *testing.T) {
	e := newTestEngine(corridorBoard())
	addObserver(t, e, "alice", 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Render(t *testing.T) {
	e := newTestEngine(testutil.BoardFromRows("..#.."))
	alice := addObserver(t, e, "alice", 0, 0)
	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	out, err := e.Render(alice, RenderOptions{})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "    0 1 2 3 4", lines[0])
	assert.Equal(t, " 0 @ . #     ", lines[1])
	assert.Contains(t, out, "step 1, known 3/5")
	assert.NotContains(t, out, "\033[", "plain rendering should not contain color codes")

	colored, err := e.Render(alice, RenderOptions{Color: true})
	require.NoError(t, err)
	assert.Contains(t, colored, ColorRed+ObserverSymbol+ColorReset)
	assert.Contains(t, colored, ColorWhite+"#"+ColorReset)

	_, err = e.Render("nobody", RenderOptions{})
	assert.ErrorIs(t, err, core.ErrUnknownObserver)
}

func TestEngine_RenderVisibility(t *testing.T) {
	e := newTestEngine(testutil.BoardFromRows("..4.."))
	alice := addObserver(t, e, "alice", 0, 0)
	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	out, err := e.Render(alice, RenderOptions{ShowVisibility: true})
	require.NoError(t, err)
	assert.Equal(t, " 0 @ 9 5 5 5 ", strings.Split(out, "\n")[1])
}

func TestEngine_RenderRemembered(t *testing.T) {
	e := NewEngine(testutil.BoardFromRows("..."), EngineConfig{
		DefaultDistance: 2,
		RememberContent: true,
		Logger:          testutil.NopLogger(),
	})
	alice := addObserver(t, e, "alice", 0, 0)
	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	_, err = e.MoveObserver(alice, core.Coordinate{X: 2, Y: 0})
	require.NoError(t, err)
	_, err = e.Tick(context.Background())
	require.NoError(t, err)

	grid, err := e.Knowledge(alice)
	require.NoError(t, err)
	assert.False(t, grid.IsVisible(core.Coordinate{X: 0, Y: 0}))

	out, err := e.Render(alice, RenderOptions{Color: true})
	require.NoError(t, err)
	assert.Contains(t, out, ColorGray+"."+ColorReset, "out of sight cells should render as remembered")
}
