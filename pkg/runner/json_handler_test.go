package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader(""), out)

	view := domain.View{
		Step:    domain.Step{ID: "q1", Kind: domain.KindTrivia},
		Percent: 11,
		Actions: []string{"answer", "submit", "reset"},
	}
	require.NoError(t, h.Output(context.Background(), view))
	require.NoError(t, h.SystemOutput(context.Background(), "oops"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var got domain.View
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, domain.StepID("q1"), got.Step.ID)
	assert.Equal(t, 11, got.Percent)
	assert.JSONEq(t, `{"type":"system","message":"oops"}`, lines[1])
}

func TestJSONHandler_Input(t *testing.T) {
	in := strings.NewReader("\"quoted\"\nplain text\n{\"kind\":\"reset\"}\nlast")
	h := NewJSONHandler(in, &bytes.Buffer{})
	ctx := context.Background()

	for _, want := range []string{"quoted", "plain text", `{"kind":"reset"}`, "last"} {
		got, err := h.Input(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := h.Input(ctx)
	assert.Error(t, err)
}
