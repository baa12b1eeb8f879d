// Package hooks evaluates operator-defined part acceptance rules before a
// part is committed to the inventory system. Rules are CEL expressions
// loaded from the config dir; a matching rule either rejects the part or
// attaches a warning to the import.
package hooks

import (
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
)

// Action says what happens when a rule's expression evaluates to true.
type Action string

const (
	ActionWarn   Action = "warn"
	ActionReject Action = "reject"
)

// Rule is one operator-defined check. Expr is a CEL expression over a `part`
// map variable, e.g. `part.datasheet_url == ""`.
type Rule struct {
	Name    string `yaml:"name" json:"name"`
	Expr    string `yaml:"when" json:"when"`
	Action  Action `yaml:"action" json:"action"`
	Message string `yaml:"message" json:"message"`
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// Engine holds compiled rules. Safe for concurrent use after construction.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the given rules. A rule that fails to compile is a
// configuration error, reported with the rule name.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("part", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}

	engine := &Engine{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		if rule.Expr == "" {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("rule %q has no expression", rule.Name))
		}
		if rule.Action == "" {
			rule.Action = ActionWarn
		}
		if rule.Action != ActionWarn && rule.Action != ActionReject {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("rule %q has unknown action %q", rule.Name, rule.Action))
		}

		ast, issues := env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, apperror.NewConfiguration(
				fmt.Sprintf("rule %q does not compile", rule.Name)).
				WithDetail("error", issues.Err().Error())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build program for rule %q: %w", rule.Name, err)
		}

		engine.rules = append(engine.rules, compiledRule{rule: rule, program: program})
	}
	return engine, nil
}

// Len returns the number of compiled rules.
func (e *Engine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// Evaluate runs all rules against the part. Warnings from matching warn
// rules are collected; the first matching reject rule stops evaluation and
// returns a validation error carrying the rule message. A nil engine
// evaluates to no rules.
func (e *Engine) Evaluate(p part.Part) ([]string, error) {
	if e == nil || len(e.rules) == 0 {
		return nil, nil
	}

	partMap, err := toMap(p)
	if err != nil {
		return nil, fmt.Errorf("encode part for rules: %w", err)
	}

	var warnings []string
	for _, cr := range e.rules {
		out, _, err := cr.program.Eval(map[string]any{"part": partMap})
		if err != nil {
			// A rule that cannot evaluate against this part is reported,
			// not silently skipped.
			warnings = append(warnings,
				fmt.Sprintf("rule %q failed to evaluate: %v", cr.rule.Name, err))
			continue
		}
		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}

		message := cr.rule.Message
		if message == "" {
			message = fmt.Sprintf("rule %q matched", cr.rule.Name)
		}
		if cr.rule.Action == ActionReject {
			return warnings, apperror.NewValidation(message).
				WithDetail("rule", cr.rule.Name)
		}
		warnings = append(warnings, message)
	}
	return warnings, nil
}

// toMap converts a Part to the loosely typed map CEL expressions see, using
// the same JSON field names the API exposes.
func toMap(p part.Part) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
