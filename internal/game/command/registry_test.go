package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("rc")
	assert.True(t, ok)
	assert.Equal(t, "rc", cmd.Name)
	assert.Equal(t, HandlerCheck, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("roll")
	assert.True(t, ok)
	assert.Equal(t, "r", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestResolve_AllCommands(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"r", HandlerRoll},
		{"roll", HandlerRoll},
		{"rc", HandlerCheck},
		{"ra", HandlerCheck},
		{"check", HandlerCheck},
		{"rb", HandlerBonus},
		{"rp", HandlerPenalty},
		{"set", HandlerSet},
		{"help", HandlerHelp},
		{"h", HandlerHelp},
		{"quit", HandlerQuit},
		{"exit", HandlerQuit},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	cmds := []Command{
		{Name: "test", Handler: "a"},
		{Name: "test", Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	cmds := []Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	cmds := []Command{
		{Name: "r", Handler: "a"},
		{Name: "roll", Aliases: []string{"r"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
}

func TestNewRegistry_NameCollidesWithAlias(t *testing.T) {
	cmds := []Command{
		{Name: "roll", Aliases: []string{"r"}, Handler: "a"},
		{Name: "r", Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `already an alias of "roll"`)
}

func TestNewRegistry_EmptyWord(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "", Handler: "a"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "r", Aliases: []string{""}, Handler: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty alias")
}

func TestCommands_ReturnsCopy(t *testing.T) {
	r := DefaultRegistry()
	cmds := r.Commands()
	cmds[0] = nil
	assert.NotNil(t, r.Commands()[0])
}

func TestCommands_Sorted(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	require.NotEmpty(t, cmds)
	assert.Equal(t, CategoryDice, cmds[0].Category)
	assert.Equal(t, "r", cmds[0].Name)
	assert.Equal(t, CategorySystem, cmds[len(cmds)-1].Category)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}
