// Package filterlang implements the small, safe boolean/arithmetic
// expression language event selection filters are written in — e.g.
// "n_jets >= 2 && ht > 200" — parsed with go/parser and evaluated against a
// fixed, event-derived variable environment. There is no attribute access,
// indexing, or import in the grammar: an expression can only read the named
// variables and call the small allowlisted math functions below.
package filterlang

import (
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// UnsafeExpressionError reports a filter expression that uses syntax or
// names outside the allowed grammar.
type UnsafeExpressionError struct {
	Reason string
}

func (e *UnsafeExpressionError) Error() string {
	return "filterlang: disallowed expression: " + e.Reason
}

// allowedFuncs is the closed set of callable names a filter expression may
// invoke, each taking one or more float64 arguments.
var allowedFuncs = map[string]func(args []float64) (float64, error){
	"abs":   func(a []float64) (float64, error) { return unary(a, math.Abs) },
	"sqrt":  func(a []float64) (float64, error) { return unary(a, math.Sqrt) },
	"log":   func(a []float64) (float64, error) { return unary(a, math.Log) },
	"exp":   func(a []float64) (float64, error) { return unary(a, math.Exp) },
	"round": func(a []float64) (float64, error) { return unary(a, math.Round) },
	"min":   reduceFn(math.Min),
	"max":   reduceFn(math.Max),
}

func unary(args []float64, f func(float64) float64) (float64, error) {
	if len(args) != 1 {
		return 0, errors.New("filterlang: expected exactly one argument")
	}
	return f(args[0]), nil
}

func reduceFn(f func(a, b float64) float64) func([]float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if len(args) == 0 {
			return 0, errors.New("filterlang: expected at least one argument")
		}
		out := args[0]
		for _, a := range args[1:] {
			out = f(out, a)
		}
		return out, nil
	}
}

// Compiled is a filter expression that has passed the AST allowlist and is
// ready to evaluate against any number of environments.
type Compiled struct {
	source string
	expr   ast.Expr
}

// Source returns the original expression text.
func (c *Compiled) Source() string { return c.source }

// Compile parses expr as a Go expression and validates it against the
// allowed grammar. It never executes anything: syntax and name validation
// happen entirely on the parsed tree.
func Compile(expr string) (*Compiled, error) {
	tree, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, &UnsafeExpressionError{Reason: err.Error()}
	}
	if err := validate(tree); err != nil {
		return nil, err
	}
	return &Compiled{source: expr, expr: tree}, nil
}

func validate(n ast.Node) error {
	var walkErr error
	ast.Inspect(n, func(node ast.Node) bool {
		if walkErr != nil {
			return false
		}
		switch v := node.(type) {
		case nil, *ast.BinaryExpr, *ast.UnaryExpr, *ast.ParenExpr, *ast.BasicLit:
			// allowed, nothing further to check
		case *ast.Ident:
			if strings.HasPrefix(v.Name, "__") {
				walkErr = &UnsafeExpressionError{Reason: "dunder-like names are not allowed: " + v.Name}
				return false
			}
		case *ast.CallExpr:
			fn, ok := v.Fun.(*ast.Ident)
			if !ok {
				walkErr = &UnsafeExpressionError{Reason: "only simple function calls are allowed"}
				return false
			}
			if _, ok := allowedFuncs[fn.Name]; !ok {
				walkErr = &UnsafeExpressionError{Reason: "function not allowed: " + fn.Name}
				return false
			}
		default:
			walkErr = &UnsafeExpressionError{Reason: nodeKind(node)}
			return false
		}
		return true
	})
	return walkErr
}

func nodeKind(n ast.Node) string {
	switch n.(type) {
	case *ast.SelectorExpr:
		return "attribute access is not allowed"
	case *ast.IndexExpr:
		return "indexing is not allowed"
	default:
		return "unsupported syntax"
	}
}

// Environment is the fixed set of event-derived variables a filter
// expression may read.
type Environment map[string]float64

// Variables computes the filter environment for one event: particle
// counts, the nominal weight, generator scalars, and the derived jet/
// lepton/photon/neutrino counts, HT, and MET.
func Variables(ev hepmodel.Event) Environment {
	final := ev.FinalParticles()
	incoming := ev.IncomingParticles()

	var nJets, nLeptons, nPhotons, nNeutrinos int
	var ht, metX, metY float64

	for _, p := range final {
		aid := p.PDGID
		if aid < 0 {
			aid = -aid
		}
		pt := p.Pt()

		switch {
		case (aid >= 1 && aid <= 6) || aid == 21:
			nJets++
			ht += pt
		case aid == 11 || aid == 13 || aid == 15:
			nLeptons++
			ht += pt
		case aid == 12 || aid == 14 || aid == 16:
			nNeutrinos++
			metX += p.Px
			metY += p.Py
		case aid == 22:
			nPhotons++
			ht += pt
		default:
			ht += pt
		}
	}

	return Environment{
		"n_particles": float64(len(ev.Particles)),
		"n_final":     float64(len(final)),
		"n_incoming":  float64(len(incoming)),
		"weight":      ev.Weight(),
		"process_id":  float64(ev.ProcessID),
		"scale":       ev.Scale,
		"alpha_qed":   ev.AlphaQED,
		"alpha_qcd":   ev.AlphaQCD,
		"n_jets":      float64(nJets),
		"n_leptons":   float64(nLeptons),
		"n_photons":   float64(nPhotons),
		"n_neutrinos": float64(nNeutrinos),
		"ht":          ht,
		"met":         math.Sqrt(metX*metX + metY*metY),
	}
}

// Eval evaluates c against env. A nonzero result is "true".
func (c *Compiled) Eval(env Environment) (float64, error) {
	return evalExpr(c.expr, env)
}

// Matches reports whether ev satisfies the compiled filter.
func (c *Compiled) Matches(ev hepmodel.Event) (bool, error) {
	v, err := c.Eval(Variables(ev))
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func evalExpr(n ast.Expr, env Environment) (float64, error) {
	switch v := n.(type) {
	case *ast.ParenExpr:
		return evalExpr(v.X, env)
	case *ast.BasicLit:
		switch v.Kind {
		case token.INT, token.FLOAT:
			f, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return 0, errors.Wrap(err, "filterlang: parse literal")
			}
			return f, nil
		default:
			return 0, errors.Errorf("filterlang: unsupported literal kind %v", v.Kind)
		}
	case *ast.Ident:
		val, ok := env[v.Name]
		if !ok {
			return 0, errors.Errorf("filterlang: unknown variable %q", v.Name)
		}
		return val, nil
	case *ast.UnaryExpr:
		x, err := evalExpr(v.X, env)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case token.SUB:
			return -x, nil
		case token.ADD:
			return x, nil
		case token.NOT:
			return boolToFloat(x == 0), nil
		default:
			return 0, errors.Errorf("filterlang: unsupported unary operator %v", v.Op)
		}
	case *ast.BinaryExpr:
		return evalBinary(v, env)
	case *ast.CallExpr:
		fn := v.Fun.(*ast.Ident).Name
		args := make([]float64, len(v.Args))
		for i, a := range v.Args {
			val, err := evalExpr(a, env)
			if err != nil {
				return 0, err
			}
			args[i] = val
		}
		return allowedFuncs[fn](args)
	default:
		return 0, errors.Errorf("filterlang: unsupported expression node %T", n)
	}
}

func evalBinary(v *ast.BinaryExpr, env Environment) (float64, error) {
	if v.Op == token.LAND {
		l, err := evalExpr(v.X, env)
		if err != nil {
			return 0, err
		}
		if l == 0 {
			return 0, nil
		}
		r, err := evalExpr(v.Y, env)
		if err != nil {
			return 0, err
		}
		return boolToFloat(r != 0), nil
	}
	if v.Op == token.LOR {
		l, err := evalExpr(v.X, env)
		if err != nil {
			return 0, err
		}
		if l != 0 {
			return 1, nil
		}
		r, err := evalExpr(v.Y, env)
		if err != nil {
			return 0, err
		}
		return boolToFloat(r != 0), nil
	}

	l, err := evalExpr(v.X, env)
	if err != nil {
		return 0, err
	}
	r, err := evalExpr(v.Y, env)
	if err != nil {
		return 0, err
	}

	switch v.Op {
	case token.ADD:
		return l + r, nil
	case token.SUB:
		return l - r, nil
	case token.MUL:
		return l * r, nil
	case token.QUO:
		return l / r, nil
	case token.REM:
		return math.Mod(l, r), nil
	case token.EQL:
		return boolToFloat(l == r), nil
	case token.NEQ:
		return boolToFloat(l != r), nil
	case token.LSS:
		return boolToFloat(l < r), nil
	case token.LEQ:
		return boolToFloat(l <= r), nil
	case token.GTR:
		return boolToFloat(l > r), nil
	case token.GEQ:
		return boolToFloat(l >= r), nil
	default:
		return 0, errors.Errorf("filterlang: unsupported binary operator %v", v.Op)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// VariableNames returns the sorted names of every variable Variables
// populates, for help text and error messages.
func VariableNames() []string {
	names := make([]string, 0, 14)
	for k := range Variables(hepmodel.NewEvent()) {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
