package runtime_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/heartsquest/internal/runtime"
	"github.com/aretw0/heartsquest/internal/testutils"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatedTable = `
start: start
hub: map
calculating: calc
final: final
nodes:
  - { id: a, order: 0 }
  - { id: b, order: 1 }
steps:
  - { id: start, kind: intro, next: map }
  - { id: map, kind: hub }
  - { id: a, kind: trivia, success: a_done, rule: { type: exact, values: ["yes"] } }
  - { id: a_done, kind: success, node: a, next: calc }
  - { id: b, kind: trivia, success: b_done, rule: { type: exact, values: ["yes"] } }
  - { id: b_done, kind: success, node: b, next: calc }
  - { id: calc, kind: calculating, delay: 3s, next: final }
  - { id: final, kind: final }
`

func setup(t *testing.T, table *content.Table, opts ...runtime.Option) (*runtime.Controller, *testutils.ManualClock) {
	t.Helper()
	clock := testutils.NewManualClock()
	opts = append([]runtime.Option{runtime.WithClock(clock), runtime.WithSeed(42)}, opts...)
	c := runtime.New(table, "test-session", opts...)
	t.Cleanup(c.Close)
	return c, clock
}

func parse(t *testing.T, doc string) *content.Table {
	t.Helper()
	table, err := content.Parse([]byte(doc))
	require.NoError(t, err)
	return table
}

func TestScenario_SuccessPath(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("map"))
	require.Equal(t, domain.StepID("start"), c.Snapshot().CurrentStep)

	out, err := c.SelectNode(ctx, "q1")
	require.NoError(t, err)
	require.True(t, out.Accepted)

	out, err = c.SubmitAnswer(ctx, "we matched on that one frog picture")
	require.NoError(t, err)
	require.True(t, out.Accepted)
	assert.Equal(t, domain.StepID("s1"), out.Step)

	out, err = c.Continue(ctx)
	require.NoError(t, err)
	require.True(t, out.Accepted)

	p := c.Snapshot()
	assert.Equal(t, 1, p.HighestUnlocked)
	assert.Equal(t, []domain.StepID{"q1"}, p.Completed)
	assert.Equal(t, domain.StepID("map"), p.CurrentStep)
}

func TestScenario_LockedNodeRejected(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("map"))
	before := c.Snapshot()

	out, err := c.SelectNode(ctx, "q3")
	require.NoError(t, err)
	assert.False(t, out.Accepted)

	after := c.Snapshot()
	assert.Equal(t, before.CurrentStep, after.CurrentStep)
	assert.Equal(t, before.Revision, after.Revision)

	out, _ = c.SelectNode(ctx, "nowhere")
	assert.False(t, out.Accepted)
}

const pressTable = `
start: map
hub: map
final: final
nodes:
  - { id: press, order: 0 }
steps:
  - { id: map, kind: hub }
  - { id: press, kind: press, success: press_done }
  - { id: press_done, kind: success, node: press }
  - { id: final, kind: final }
`

func TestSelectNode_OnlyFromHubOrIntro(t *testing.T) {
	ctx := context.Background()

	t.Run("final is terminal", func(t *testing.T) {
		c, clock := setup(t, parse(t, gatedTable))
		_, _ = c.Start(ctx)
		for _, node := range []domain.StepID{"a", "b"} {
			_, _ = c.SelectNode(ctx, node)
			_, _ = c.SubmitAnswer(ctx, "yes")
			_, _ = c.Continue(ctx)
		}
		clock.Advance(4 * time.Second)
		require.Equal(t, domain.StepID("final"), c.Snapshot().CurrentStep)
		before := c.Snapshot()

		out, err := c.SelectNode(ctx, "a")
		require.NoError(t, err)
		assert.False(t, out.Accepted)
		assert.Equal(t, before, c.Snapshot())
	})

	t.Run("success screen must be continued", func(t *testing.T) {
		c, _ := setup(t, content.MustVariant("map"))
		_, _ = c.SelectNode(ctx, "q1")
		_, _ = c.SubmitAnswer(ctx, "frog")
		require.Equal(t, domain.StepID("s1"), c.Snapshot().CurrentStep)

		out, err := c.SelectNode(ctx, "q1")
		require.NoError(t, err)
		assert.False(t, out.Accepted)
		p := c.Snapshot()
		assert.Equal(t, domain.StepID("s1"), p.CurrentStep)

		_, _ = c.Continue(ctx)
		assert.Equal(t, []domain.StepID{"q1"}, c.Snapshot().Completed)
	})

	t.Run("running mini-game keeps its state", func(t *testing.T) {
		c, _ := setup(t, parse(t, pressTable))
		_, _ = c.SelectNode(ctx, "press")
		out, _ := c.Action(ctx, "press", "press", 0, "")
		require.True(t, out.Accepted)

		out, err := c.SelectNode(ctx, "press")
		require.NoError(t, err)
		assert.False(t, out.Accepted)
		p := c.Snapshot()
		assert.Equal(t, domain.StepID("press"), p.CurrentStep)
		require.NotNil(t, p.Games.Press)
		assert.Equal(t, 1, p.Games.Press.Count)
	})

	t.Run("trivia step", func(t *testing.T) {
		c, _ := setup(t, content.MustVariant("map"))
		_, _ = c.SelectNode(ctx, "q1")
		out, _ := c.SelectNode(ctx, "q1")
		assert.False(t, out.Accepted)
	})
}

func TestSubmitAnswer_WrongIsSilent(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("linear"))
	_, _ = c.Start(ctx)
	_, _ = c.TypeAnswer(ctx, "a toad")
	before := c.Snapshot()

	out, err := c.SubmitAnswer(ctx, "")
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, before, c.Snapshot())

	_, _ = c.TypeAnswer(ctx, "FROG!!")
	out, _ = c.SubmitAnswer(ctx, "")
	assert.True(t, out.Accepted)
	p := c.Snapshot()
	assert.Equal(t, domain.StepID("s1"), p.CurrentStep)
	assert.Empty(t, p.Answer, "buffer is cleared on success")
}

func TestAdvanceFromSuccess_MonotonicAndIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("map"))

	complete := func(node domain.StepID, answer string, next int) {
		t.Helper()
		out, _ := c.SelectNode(ctx, node)
		require.True(t, out.Accepted, "select %s", node)
		out, _ = c.SubmitAnswer(ctx, answer)
		require.True(t, out.Accepted, "answer %s", node)
		out, _ = c.AdvanceFromSuccess(ctx, next)
		require.True(t, out.Accepted)
	}

	complete("q1", "frog", 5)
	assert.Equal(t, 5, c.Snapshot().HighestUnlocked)

	complete("q2", "Minecraft", 2)
	assert.Equal(t, 5, c.Snapshot().HighestUnlocked, "smaller index never lowers the unlock")

	complete("q1", "frog", 1)
	p := c.Snapshot()
	assert.Equal(t, 5, p.HighestUnlocked)
	assert.Equal(t, []domain.StepID{"q1", "q2"}, p.Completed)

	out, _ := c.AdvanceFromSuccess(ctx, 9)
	assert.False(t, out.Accepted, "only success screens advance")
}

func TestCalculating_GatedThenTimed(t *testing.T) {
	ctx := context.Background()
	c, clock := setup(t, parse(t, gatedTable))

	_, _ = c.Start(ctx)
	_, _ = c.SelectNode(ctx, "a")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	assert.Equal(t, domain.StepID("map"), c.Snapshot().CurrentStep, "calculating needs every node")

	_, _ = c.SelectNode(ctx, "b")
	_, _ = c.SubmitAnswer(ctx, "Yes!")
	_, _ = c.Continue(ctx)
	require.Equal(t, domain.StepID("calc"), c.Snapshot().CurrentStep)

	out, _ := c.Continue(ctx)
	assert.False(t, out.Accepted, "calculating only moves on its timer")
	out, _ = c.SelectNode(ctx, "a")
	assert.False(t, out.Accepted)

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, domain.StepID("calc"), c.Snapshot().CurrentStep)
	clock.Advance(time.Millisecond)
	assert.Equal(t, domain.StepID("final"), c.Snapshot().CurrentStep)
	assert.Zero(t, c.PendingTimers())
}

func TestReset_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	c, clock := setup(t, parse(t, gatedTable))

	_, _ = c.Start(ctx)
	_, _ = c.SelectNode(ctx, "a")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	_, _ = c.SelectNode(ctx, "b")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	clock.Advance(3 * time.Second)
	require.Equal(t, domain.StepID("final"), c.Snapshot().CurrentStep)
	before := c.Snapshot().Revision

	out, err := c.Action(ctx, "final", "play_again", 0, "")
	require.NoError(t, err)
	require.True(t, out.Accepted)

	p := c.Snapshot()
	assert.Equal(t, domain.StepID("start"), p.CurrentStep)
	assert.Zero(t, p.HighestUnlocked)
	assert.Empty(t, p.Completed)
	assert.Equal(t, []domain.StepID{"start"}, p.History)
	assert.Greater(t, p.Revision, before, "revisions survive a reset")
}

func TestReset_CancelsStepTimers(t *testing.T) {
	ctx := context.Background()
	c, clock := setup(t, parse(t, gatedTable))

	_, _ = c.Start(ctx)
	_, _ = c.SelectNode(ctx, "a")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	_, _ = c.SelectNode(ctx, "b")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	require.Equal(t, domain.StepID("calc"), c.Snapshot().CurrentStep)
	require.Equal(t, 1, c.PendingTimers())

	_, _ = c.Reset(ctx)
	rev := c.Snapshot().Revision
	assert.Zero(t, clock.Pending(), "leaving the step stops its timer")

	clock.Advance(10 * time.Second)
	p := c.Snapshot()
	assert.Equal(t, domain.StepID("start"), p.CurrentStep)
	assert.Equal(t, rev, p.Revision)
}

func TestDispatch_Routes(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("linear"))

	out, err := c.Dispatch(ctx, domain.Intent{Kind: domain.IntentStart})
	require.NoError(t, err)
	assert.True(t, out.Accepted)

	out, err = c.Dispatch(ctx, domain.Intent{Kind: domain.IntentSubmit, Text: "frog"})
	require.NoError(t, err)
	assert.Equal(t, domain.StepID("s1"), out.Step)

	_, err = c.Dispatch(ctx, domain.Intent{Kind: "dance"})
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)

	_, err = c.Dispatch(ctx, domain.Intent{Kind: "dance", Text: strings.Repeat("x", 5000)})
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)
}

func TestDispatch_BadInputIsSilent(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("linear"))
	_, _ = c.Start(ctx)
	_, _ = c.TypeAnswer(ctx, "fro")
	before := c.Snapshot()

	for _, in := range []domain.Intent{
		{Kind: domain.IntentAnswer, Text: strings.Repeat("x", 5000)},
		{Kind: domain.IntentSubmit, Text: strings.Repeat("frog ", 1000)},
		{Kind: domain.IntentSubmit, Text: "frog\xff"},
		{Kind: domain.IntentAction, Game: "sliders", Action: "set", Value: "\xfe"},
	} {
		out, err := c.Dispatch(ctx, in)
		require.NoError(t, err, "%s", in.Kind)
		assert.False(t, out.Accepted, "%s", in.Kind)
		assert.Equal(t, domain.StepID("q1"), out.Step)
	}
	assert.Equal(t, before, c.Snapshot())

	c.Close()
	_, err := c.Dispatch(ctx, domain.Intent{Kind: domain.IntentSubmit, Text: "\xff"})
	assert.ErrorIs(t, err, domain.ErrFlowClosed)
}

func TestClose_RejectsIntents(t *testing.T) {
	c, _ := setup(t, parse(t, gatedTable))
	c.Close()
	_, err := c.Continue(context.Background())
	assert.ErrorIs(t, err, domain.ErrFlowClosed)
}

func TestHooks_FireInOrder(t *testing.T) {
	ctx := context.Background()
	var (
		mu  sync.Mutex
		log []string
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		log = append(log, s)
	}
	hooks := domain.LifecycleHooks{
		OnStepEnter:    func(_ context.Context, e *domain.StepEvent) { record("enter:" + string(e.StepID)) },
		OnStepLeave:    func(_ context.Context, e *domain.StepEvent) { record("leave:" + string(e.StepID)) },
		OnAnswer:       func(_ context.Context, e *domain.AnswerEvent) { record("answer:" + boolString(e.Accepted)) },
		OnNodeComplete: func(_ context.Context, e *domain.NodeEvent) { record("complete:" + string(e.NodeID)) },
		OnReset:        func(_ context.Context, _ *domain.EventBase) { record("reset") },
	}
	c, _ := setup(t, parse(t, gatedTable), runtime.WithLifecycleHooks(hooks))

	_, _ = c.Start(ctx)
	_, _ = c.SelectNode(ctx, "a")
	_, _ = c.SubmitAnswer(ctx, "no")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	_, _ = c.Reset(ctx)

	assert.Equal(t, []string{
		"enter:start",
		"leave:start", "enter:map",
		"leave:map", "enter:a",
		"answer:false",
		"answer:true", "leave:a", "enter:a_done",
		"complete:a", "leave:a_done", "enter:map",
		"leave:map", "reset", "enter:start",
	}, log)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func TestSubscribe_ReceivesOrderedSnapshots(t *testing.T) {
	ctx := context.Background()
	c, _ := setup(t, content.MustVariant("map"))

	var revs []uint64
	cancel := c.Subscribe(func(p *domain.Progress) { revs = append(revs, p.Revision) })

	_, _ = c.Start(ctx)
	_, _ = c.SelectNode(ctx, "q2") // refused, no snapshot
	_, _ = c.SelectNode(ctx, "q1")
	cancel()
	_, _ = c.Reset(ctx)

	assert.Equal(t, []uint64{1, 2}, revs)
}

func TestView_ProgressBar(t *testing.T) {
	ctx := context.Background()

	linear, _ := setup(t, content.MustVariant("linear"))
	v := linear.View()
	assert.False(t, v.ShowProgress)
	assert.Equal(t, domain.IntensityHigh, v.Intensity)
	assert.Contains(t, v.Actions, "start")
	assert.Empty(t, v.Nodes)

	_, _ = linear.Start(ctx)
	_, _ = linear.SubmitAnswer(ctx, "frog")
	_, _ = linear.Continue(ctx)
	v = linear.View()
	assert.Equal(t, domain.StepID("q2"), v.Step.ID)
	assert.True(t, v.ShowProgress)
	assert.Equal(t, 22, v.Percent)
	assert.Equal(t, "Game title...", v.Step.Placeholder)

	hub, _ := setup(t, content.MustVariant("map"))
	_, _ = hub.SelectNode(ctx, "q1")
	_, _ = hub.SubmitAnswer(ctx, "frog")
	_, _ = hub.Continue(ctx)
	v = hub.View()
	assert.Equal(t, 7, v.Percent)
	require.Len(t, v.Nodes, 13)
	assert.True(t, v.Nodes[0].Completed)
	assert.True(t, v.Nodes[1].Active)
	assert.False(t, v.Nodes[2].Unlocked)
}

func TestResume_RearmsTimers(t *testing.T) {
	ctx := context.Background()
	table := parse(t, gatedTable)
	c, _ := setup(t, table)
	_, _ = c.Start(ctx)
	_, _ = c.SelectNode(ctx, "a")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	_, _ = c.SelectNode(ctx, "b")
	_, _ = c.SubmitAnswer(ctx, "yes")
	_, _ = c.Continue(ctx)
	snap := c.Snapshot()
	c.Close()

	clock := testutils.NewManualClock()
	resumed, err := runtime.Resume(table, snap, runtime.WithClock(clock))
	require.NoError(t, err)
	defer resumed.Close()
	assert.Equal(t, snap.Revision, resumed.Snapshot().Revision)

	clock.Advance(3 * time.Second)
	assert.Equal(t, domain.StepID("final"), resumed.Snapshot().CurrentStep)

	snap.CurrentStep = "gone"
	_, err = runtime.Resume(table, snap)
	assert.ErrorIs(t, err, domain.ErrUnknownStep)
}
