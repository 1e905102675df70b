package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/kerneltest"
)

func newTestEngine() *Engine {
	return New(kerneltest.BoxKernel{})
}

// messages joins every eval error message.
func messages(errs []EvalError) string {
	var parts []string
	for _, e := range errs {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "\n")
}

func TestEvaluateEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		job, evalErrs, err := newTestEngine().Evaluate(src)
		require.NoError(t, err)
		assert.Empty(t, evalErrs)
		require.NotNil(t, job)
		assert.Empty(t, job.Models)
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	src := `
(def x 10)
(def y 20)
(+ x y)
`
	job, evalErrs, err := newTestEngine().Evaluate(src)
	require.NoError(t, err)
	assert.Empty(t, evalErrs)
	require.NotNil(t, job)
	assert.Empty(t, job.Models)
}

func TestEvaluateSyntaxError(t *testing.T) {
	job, evalErrs, err := newTestEngine().Evaluate("(model \"a\" (box 1 2 3)")
	require.NoError(t, err, "syntax errors are not fatal")
	assert.Nil(t, job)
	require.NotEmpty(t, evalErrs)
	assert.NotEmpty(t, evalErrs[0].Message)
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	job, evalErrs, err := newTestEngine().Evaluate("(box 1 2 undefined-size)")
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.NotEmpty(t, evalErrs)
}

func TestEvaluateSurvivesKernelPanic(t *testing.T) {
	eng := New(panicKernel{})

	job, evalErrs, err := eng.Evaluate(`(model "boom" (box 1 1 1))`)
	assert.Nil(t, job)
	if err == nil {
		// The interpreter may report the panic as a script error itself.
		assert.NotEmpty(t, evalErrs)
		return
	}
	assert.Contains(t, err.Error(), "panic during evaluation")
	assert.Nil(t, evalErrs)
}

// panicKernel fails hard on every box.
type panicKernel struct {
	kerneltest.BoxKernel
}

func (panicKernel) Box(x, y, z float64) (kernel.Solid, error) {
	panic("kernel exploded")
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := newTestEngine()
	src := `(model "plate" (translate (box 4 5 6) 1 2 3))`

	for i := 0; i < 5; i++ {
		job, evalErrs, err := eng.Evaluate(src)
		require.NoError(t, err, "iteration %d", i)
		require.Empty(t, evalErrs)
		require.Len(t, job.Models, 1)
		b := job.Models[0].Solid.Bounds()
		assert.Equal(t, v3.Vec{X: 1, Y: 2, Z: 3}, b.Min)
		assert.Equal(t, v3.Vec{X: 5, Y: 7, Z: 9}, b.Max)
	}
}

func TestTimeoutOption(t *testing.T) {
	assert.Equal(t, DefaultTimeout, newTestEngine().Timeout())
	assert.Equal(t, time.Second, New(kerneltest.BoxKernel{}, WithTimeout(time.Second)).Timeout())
	assert.Equal(t, DefaultTimeout, New(kerneltest.BoxKernel{}, WithTimeout(-1)).Timeout())
}

func TestWaitWithTimeoutExpires(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 20*time.Millisecond, 1, &mu, &gen)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "20ms")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitWithTimeoutDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)
	ch := make(chan evalResult, 1)
	ch <- evalResult{job: &Job{}}

	job, _, err := waitWithTimeout(ch, time.Second, 1, &mu, &gen)
	assert.True(t, errors.Is(err, ErrSuperseded))
	assert.Nil(t, job)
}

func TestWaitWithTimeoutReturnsCurrent(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(3)
	ch := make(chan evalResult, 1)
	want := &Job{Models: []Model{{Name: "a"}}}
	ch <- evalResult{job: want}

	job, evalErrs, err := waitWithTimeout(ch, time.Second, 3, &mu, &gen)
	require.NoError(t, err)
	assert.Nil(t, evalErrs)
	assert.Same(t, want, job)
}

func TestEvalErrorString(t *testing.T) {
	assert.Equal(t, "line 5: something went wrong", EvalError{Line: 5, Message: "something went wrong"}.Error())
	assert.Equal(t, "no location", EvalError{Message: "no location"}.Error())
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: box: missing z", 3, "box: missing z"},
		{"no line", "some generic error", 0, "some generic error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantLine, errs[0].Line)
			assert.Equal(t, tt.wantMsg, errs[0].Message)
		})
	}
}

func TestJobLookupAndNames(t *testing.T) {
	job := &Job{Models: []Model{{Name: "a"}, {Name: "b"}}}

	m, ok := job.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "b", m.Name)
	_, ok = job.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, job.Names())
}
