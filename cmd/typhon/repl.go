package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tanema/typhon/src/conf"
	"github.com/tanema/typhon/src/parse"
	"github.com/tanema/typhon/src/resolve"
	"github.com/tanema/typhon/src/types"
)

func repl(prog *types.Program, lookup types.MemberAccess) error {
	rl, err := readline.New(conf.REPLPROMPT)
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()
	for {
		src, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(src) > 0 {
					fmt.Fprint(os.Stderr, "Press ctrl-c again to quit.\n")
					continue
				}
				break
			}
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		res, err := query(prog, lookup, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Fprintln(os.Stderr, res)
	}
	return nil
}

// query answers a single repl line. A <: B reports if A can be cast to B, A | B
// shows the common type of A and B and anything else is shown resolved. Names
// that cannot be resolved are reported and read as Any.
func query(prog *types.Program, lookup types.MemberAccess, src string) (string, error) {
	seen := prog.Errors.Len()
	defer func() {
		for _, err := range prog.Errors.Errors()[seen:] {
			fmt.Fprintln(os.Stderr, err)
		}
	}()
	if from, to, ok := strings.Cut(src, "<:"); ok {
		a, b, err := readPair(prog, lookup, from, to)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%v <: %v = %v", a, b, types.CanCastTo(a, b)), nil
	} else if left, right, ok := strings.Cut(src, "|"); ok {
		a, b, err := readPair(prog, lookup, left, right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%v | %v = %v", a, b, types.CommonType(a, b)), nil
	}
	ref, err := read(prog, lookup, src)
	if err != nil {
		return "", err
	}
	return describe(ref), nil
}

func read(prog *types.Program, lookup types.MemberAccess, src string) (*types.TypeRef, error) {
	expr, err := parse.Type("<repl>", strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	ref := resolve.ReadType(prog, expr, lookup)
	resolve.Type(ref.Type)
	return ref, nil
}

func readPair(prog *types.Program, lookup types.MemberAccess, left, right string) (*types.TypeRef, *types.TypeRef, error) {
	a, err := read(prog, lookup, left)
	if err != nil {
		return nil, nil, err
	}
	b, err := read(prog, lookup, right)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func describe(ref *types.TypeRef) string {
	parents := make([]string, 0, len(ref.Parents()))
	for _, parent := range ref.Parents() {
		parents = append(parents, parent.String())
	}
	name := ref.String()
	switch ref.Type.Kind() {
	case types.KindUser, types.KindSystem:
		name = types.QualifiedName(ref.Type)
		if len(ref.TemplateArgs) > 0 {
			name = ref.String() + " (" + name + ")"
		}
	}
	if len(parents) == 0 {
		return fmt.Sprintf("%v %v", ref.Type.Kind(), name)
	}
	return fmt.Sprintf("%v %v: %v", ref.Type.Kind(), name, strings.Join(parents, ", "))
}
