package runtime_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aretw0/heartsquest/internal/runtime"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Minecraft!", "minecraft"},
		{" MINECRAFT ", "minecraft"},
		{"minecraft ", "minecraft"},
		{"Who are you??", "who are you"},
		{"We matched on that one FROG picture :)", "we matched on that one frog picture"},
		{"Café", "caf"},
		{"\tmine-craft\n", "minecraft"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, runtime.Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	alphabet := []rune("aZ09 !?.-_\t\néß😀 ")
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		n := r.IntN(24)
		s := make([]rune, n)
		for j := range s {
			s[j] = alphabet[r.IntN(len(alphabet))]
		}
		once := runtime.Normalize(string(s))
		assert.Equal(t, once, runtime.Normalize(once), "input %q", string(s))
	}
}

func TestMatch_Rules(t *testing.T) {
	exact := &content.Rule{Type: content.RuleExact, Values: []string{"minecraft"}}
	contains := &content.Rule{Type: content.RuleContains, Values: []string{"frog"}}
	anyOf := &content.Rule{Type: content.RuleAny, Values: []string{"who is you", "who are you"}}

	for _, raw := range []string{"Minecraft!", " MINECRAFT ", "minecraft "} {
		assert.True(t, runtime.Match(exact, runtime.Normalize(raw)), raw)
	}
	for _, raw := range []string{"mine craft", "minecraft 2", "terraria"} {
		assert.False(t, runtime.Match(exact, runtime.Normalize(raw)), raw)
	}

	assert.True(t, runtime.Match(contains, runtime.Normalize("we matched on that one frog picture")))
	assert.False(t, runtime.Match(contains, runtime.Normalize("a toad")))

	assert.True(t, runtime.Match(anyOf, runtime.Normalize("Hey, WHO ARE YOU?")))
	assert.True(t, runtime.Match(anyOf, runtime.Normalize("who is you lol")))
	assert.False(t, runtime.Match(anyOf, runtime.Normalize("hello")))

	assert.False(t, runtime.Match(nil, "anything"))
}
