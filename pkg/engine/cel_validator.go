package engine

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
)

// celValidator compiles and caches deployment-supplied validation
// expressions. Expressions see the current field value and the decision
// context and must evaluate to a boolean.
type celValidator struct {
	env      *cel.Env
	mu       sync.Mutex
	programs map[string]cel.Program
}

func newCELValidator() (*celValidator, error) {
	env, err := cel.NewEnv(
		cel.VariableDecls(
			decls.NewVariable("value", types.StringType),
			decls.NewVariable("context", types.NewMapType(types.StringType, types.DynType)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: create CEL env: %w", err)
	}
	return &celValidator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

func (v *celValidator) program(expression string) (cel.Program, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if prg, ok := v.programs[expression]; ok {
		return prg, nil
	}
	ast, issues := v.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile failed: %w", issues.Err())
	}
	prg, err := v.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program construction failed: %w", err)
	}
	v.programs[expression] = prg
	return prg, nil
}

// eval runs the expression. A non-boolean result fails closed.
func (v *celValidator) eval(expression string, value string, context map[string]interface{}) (bool, error) {
	prg, err := v.program(expression)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]interface{}{
		"value":   value,
		"context": context,
	})
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("expression returned %T, want bool", out.Value())
	}
	return ok, nil
}
