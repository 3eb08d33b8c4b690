package command

import (
	"fmt"
	"sort"
)

// Registry resolves the words players type after "." to table commands.
// Canonical names and aliases share one namespace.
type Registry struct {
	byWord map[string]*Command
	all    []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: every name and alias is non-empty and unique across cmds.
// Postcondition: Returns an error naming the first collision; no partial
// Registry is returned.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		cmd := &cmds[i]
		if err := r.claim(cmd.Name, cmd, true); err != nil {
			return nil, err
		}
		for _, alias := range cmd.Aliases {
			if err := r.claim(alias, cmd, false); err != nil {
				return nil, err
			}
		}
		r.all = append(r.all, cmd)
	}
	sort.SliceStable(r.all, func(i, j int) bool {
		if r.all[i].Category != r.all[j].Category {
			return r.all[i].Category < r.all[j].Category
		}
		return r.all[i].Name < r.all[j].Name
	})
	return r, nil
}

// claim binds word to cmd, failing if another command already holds it.
func (r *Registry) claim(word string, cmd *Command, canonical bool) error {
	kind := "alias"
	if canonical {
		kind = "command name"
	}
	if word == "" {
		return fmt.Errorf("empty %s on command %q", kind, cmd.Name)
	}
	holder, taken := r.byWord[word]
	if !taken {
		r.byWord[word] = cmd
		return nil
	}
	if holder.Name == word {
		return fmt.Errorf("duplicate %s %q: already the name of %q", kind, word, holder.Name)
	}
	return fmt.Errorf("duplicate %s %q: already an alias of %q", kind, word, holder.Name)
}

// DefaultRegistry returns the built-in table commands. The built-in set is
// fixed, so a collision is a programming error.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve finds the command a name or alias refers to.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[word]
	return cmd, ok
}

// Commands lists each command once, grouped by category and then by name,
// in the order .help prints them.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.all...)
}
