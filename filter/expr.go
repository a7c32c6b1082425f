package filter

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/smart-prospective/spctl/spapi"
)

// dateLayouts are tried in order by parseDate
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// exprFilter implements Filter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures an expr compiler
type CompilerOption func(*ExprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *ExprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[*exprFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *ExprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// ExprCompiler compiles expr expressions evaluated against API records.
// Every top-level record field is a variable of the expression.
type ExprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[*exprFilter]
}

var _ CachingCompiler = (*ExprCompiler)(nil)

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *ExprCompiler {
	c := &ExprCompiler{helperFuncs: staticHelpers()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression into an executable filter
func (c *ExprCompiler) Compile(expression string) (Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.compileEnv()),
		expr.AllowUndefinedVariables(), // record fields are only known at runtime
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{expression: expression, program: program, helpers: maps.Clone(c.helperFuncs)}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// Clear removes all cached filters
func (c *ExprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *ExprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

func (c *ExprCompiler) compileEnv() map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+2)
	maps.Copy(env, c.helperFuncs)
	// record bound helpers, replaced at runtime
	env["has"] = func(string) bool { return false }
	env["Record"] = map[string]any{}
	return env
}

// Evaluate evaluates the filter against a record
func (f *exprFilter) Evaluate(record spapi.Record) bool {
	ok, err := f.Match(record)
	return err == nil && ok
}

// Match evaluates the filter and reports evaluation failures
func (f *exprFilter) Match(record spapi.Record) (bool, error) {
	out, err := expr.Run(f.program, runtimeEnv(record, f.helpers))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Code:       record.Code(),
			Reason:     "failed to evaluate expression",
			Err:        err,
		}
	}
	result, ok := out.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expression,
			Code:       record.Code(),
			Reason:     fmt.Sprintf("expression returned %T, not a boolean", out),
		}
	}
	return result, nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func staticHelpers() map[string]any {
	return map[string]any{
		"icontains": icontains,
		"text":      text,
		"parseDate": parseDate,
		"daysSince": daysSince,
	}
}

// runtimeEnv exposes the record fields and the helpers. Helpers win over
// fields with the same name; the full record stays reachable as Record.
func runtimeEnv(record spapi.Record, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(record)+len(helpers)+2)
	for k, v := range record {
		env[k] = v
	}
	maps.Copy(env, helpers)
	env["has"] = func(key string) bool {
		v, ok := record[key]
		return ok && v != nil
	}
	env["Record"] = map[string]any(record)
	return env
}

// text renders a field value as a string, empty for nil
func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		// nested entities are matched by code or name
		if code, ok := v["code"].(string); ok {
			return code
		}
		name, _ := v["name"].(string)
		return name
	default:
		return fmt.Sprint(v)
	}
}

// icontains is a case-insensitive contains. On lists it matches when any
// element contains substr.
func icontains(value any, substr string) bool {
	needle := strings.ToLower(substr)
	if items, ok := value.([]any); ok {
		for _, item := range items {
			if strings.Contains(strings.ToLower(text(item)), needle) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(text(value)), needle)
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// daysSince accepts a time or a date string. It returns -1 when the value
// holds no date.
func daysSince(value any) int {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		t = parseDate(v)
	}
	if t.IsZero() {
		return -1
	}
	return int(time.Since(t).Hours() / 24)
}
