//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/cottand/nomtype/typeexpr"
	"github.com/cottand/nomtype/types"
	"github.com/cottand/nomtype/universe"
)

var (
	registry = universe.Builtins()
	env      = types.NewEnv(registry)
)

// isSubtype takes two type expressions over the builtin declarations
func isSubtype(_ js.Value, args []js.Value) any {
	if len(args) != 2 {
		return "expected 2 arguments"
	}
	a, err := typeexpr.Parse(args[0].String(), registry)
	if err != nil {
		return err.Error()
	}
	b, err := typeexpr.Parse(args[1].String(), registry)
	if err != nil {
		return err.Error()
	}
	ok, err := env.IsSubtype(a, b)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s <: %s: %t", a, b, ok)
}

// inferDiamond takes a target type expression and a declaration name
func inferDiamond(_ js.Value, args []js.Value) any {
	if len(args) != 2 {
		return "expected 2 arguments"
	}
	target, err := typeexpr.Parse(args[0].String(), registry)
	if err != nil {
		return err.Error()
	}
	inference, err := env.Infer(target, types.DeclID(args[1].String()))
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s (unique: %t)", inference.Result, inference.Unique)
}

func main() {
	js.Global().Set("IsSubtype", js.FuncOf(isSubtype))
	js.Global().Set("InferDiamond", js.FuncOf(inferDiamond))

	// wait indefinitely so that Go does not terminate execution
	// and the functions remain available
	<-make(chan struct{})
}
