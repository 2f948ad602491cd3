package rules

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formkit/pkg/condition"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Tester evaluates CUSTOM rules remotely. Store implements it.
type Tester interface {
	Test(ctx context.Context, ruleID int64, sample any) (TestResult, error)
}

// Evaluator validates entries against catalog rules. LENGTH, REGEX and RANGE
// run locally; CUSTOM rules go through the Tester and are skipped when none
// is configured. Blank values are not evaluated. A rule with a Condition is
// only evaluated when the condition holds for the entry.
type Evaluator struct {
	fields []model.FieldDescriptor
	rules  map[string][]Rule
	tester Tester

	mu         sync.Mutex
	regexps    map[string]*regexp.Regexp
	conditions map[string]*condition.Expr
}

var _ validation.Validator = (*Evaluator)(nil)

// NewEvaluator binds catalog rules to fields.
func NewEvaluator(fields []model.FieldDescriptor, catalog []Rule, tester Tester) *Evaluator {
	e := &Evaluator{
		fields:     append([]model.FieldDescriptor(nil), fields...),
		rules:      make(map[string][]Rule, len(fields)),
		tester:     tester,
		regexps:    make(map[string]*regexp.Regexp),
		conditions: make(map[string]*condition.Expr),
	}
	for _, field := range fields {
		matched := RulesForField(field, catalog)
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].DisplayOrder < matched[j].DisplayOrder
		})
		if len(matched) > 0 {
			e.rules[field.Name] = matched
		}
	}
	return e
}

// Len reports the number of rules bound to fields, counting a rule once per
// field it applies to.
func (e *Evaluator) Len() int {
	n := 0
	for _, bound := range e.rules {
		n += len(bound)
	}
	return n
}

// Validate implements validation.Validator. The first failing rule per
// field supplies its message.
func (e *Evaluator) Validate(ctx context.Context, entry session.Entry) (validation.Result, error) {
	res := validation.Result{Valid: true, Errors: map[string]string{}}
	for _, field := range e.fields {
		value, ok := entry[field.Name]
		if !ok || blank(value) {
			continue
		}
		for _, rule := range e.rules[field.Name] {
			applies, err := e.applies(rule, entry)
			if err != nil {
				return validation.Result{}, err
			}
			if !applies {
				continue
			}
			msg, err := e.check(ctx, rule, field, value)
			if err != nil {
				return validation.Result{}, err
			}
			if msg != "" {
				res.Valid = false
				res.Errors[field.Name] = msg
				break
			}
		}
	}
	return res, nil
}

func (e *Evaluator) check(ctx context.Context, rule Rule, field model.FieldDescriptor, value any) (string, error) {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	text := stringify(value)

	switch rule.ValidationType {
	case TypeLength:
		n := float64(utf8.RuneCountInString(text))
		lo, hi, err := bounds(rule)
		if err != nil {
			return "", err
		}
		if (lo != nil && n < *lo) || (hi != nil && n > *hi) {
			return message(rule, fmt.Sprintf("%s must be %s characters", label, describeBounds(lo, hi))), nil
		}
	case TypeRegex:
		pattern, ok := rule.Param("pattern")
		if !ok {
			pattern, _ = rule.Param("regex")
		}
		re, err := e.compile(pattern)
		if err != nil {
			return "", fmt.Errorf("rules: rule %s: %w", rule.RuleCode, err)
		}
		if !re.MatchString(text) {
			return message(rule, fmt.Sprintf("%s has an invalid format", label)), nil
		}
	case TypeRange:
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return message(rule, fmt.Sprintf("%s must be a number", label)), nil
		}
		lo, hi, err := bounds(rule)
		if err != nil {
			return "", err
		}
		if (lo != nil && n < *lo) || (hi != nil && n > *hi) {
			return message(rule, fmt.Sprintf("%s must be %s", label, describeBounds(lo, hi))), nil
		}
	case TypeCustom:
		if e.tester == nil {
			return "", nil
		}
		verdict, err := e.tester.Test(ctx, rule.ID, value)
		if err != nil {
			return "", err
		}
		if !verdict.Valid {
			if verdict.Message != "" {
				return verdict.Message, nil
			}
			return message(rule, fmt.Sprintf("%s is invalid", label)), nil
		}
	}
	return "", nil
}

func (e *Evaluator) applies(rule Rule, entry session.Entry) (bool, error) {
	if strings.TrimSpace(rule.Condition) == "" {
		return true, nil
	}
	e.mu.Lock()
	expr, ok := e.conditions[rule.Condition]
	if !ok {
		parsed, err := condition.Parse(rule.Condition)
		if err != nil {
			e.mu.Unlock()
			return false, fmt.Errorf("rules: rule %s: %w", rule.RuleCode, err)
		}
		expr = parsed
		e.conditions[rule.Condition] = expr
	}
	e.mu.Unlock()
	return expr.Eval(entry), nil
}

func (e *Evaluator) compile(pattern string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if re, ok := e.regexps[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.regexps[pattern] = re
	return re, nil
}

func bounds(rule Rule) (*float64, *float64, error) {
	parse := func(names ...string) (*float64, error) {
		for _, name := range names {
			raw, ok := rule.Param(name)
			if !ok || strings.TrimSpace(raw) == "" {
				continue
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("rules: rule %s: parameter %s: %w", rule.RuleCode, name, err)
			}
			return &n, nil
		}
		return nil, nil
	}
	lo, err := parse("min", "minLength")
	if err != nil {
		return nil, nil, err
	}
	hi, err := parse("max", "maxLength")
	if err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

func describeBounds(lo, hi *float64) string {
	format := func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("between %s and %s", format(*lo), format(*hi))
	case lo != nil:
		return "at least " + format(*lo)
	case hi != nil:
		return "at most " + format(*hi)
	default:
		return "valid"
	}
}

func message(rule Rule, fallback string) string {
	if msg := strings.TrimSpace(rule.ErrorMessage); msg != "" {
		return msg
	}
	return fallback
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func blank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
