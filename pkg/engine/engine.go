// Package engine evaluates kerf job scripts. A job script is a zygomys Lisp
// program run in a sandbox; its builtins build solids through a
// kernel.Kernel and declare the models to decompose.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/kernel"
)

// EvalError is a non-fatal problem in the script itself, such as a parse
// error or a builtin called with bad arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Model is a named solid declared with (model ...).
type Model struct {
	Name  string
	Solid kernel.Solid
}

// Job is everything a script declared, in declaration order.
type Job struct {
	Models []Model
}

// Lookup returns the model with the given name.
func (j *Job) Lookup(name string) (Model, bool) {
	for _, m := range j.Models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// Names returns the model names in declaration order.
func (j *Job) Names() []string {
	names := make([]string, len(j.Models))
	for i, m := range j.Models {
		names[i] = m.Name
	}
	return names
}

// Engine evaluates job scripts against one kernel. It is safe for
// concurrent use; each evaluation gets a fresh sandbox.
type Engine struct {
	kernel  kernel.Kernel
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout replaces DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New returns an engine whose builtins use k.
func New(k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{kernel: k, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the evaluation limit.
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// Evaluate runs source and returns the declared models.
//
//   - On success: job, nil, nil
//   - On a script error: nil, eval errors, nil
//   - On a fatal failure (timeout, panic, superseded): nil, nil, error
func (e *Engine) Evaluate(source string) (*Job, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	start := time.Now()
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		job, evalErrs := e.evaluate(source)
		ch <- evalResult{job: job, errors: evalErrs}
	}()

	job, evalErrs, err := waitWithTimeout(ch, e.timeout, gen, &e.mu, &e.generation)
	log.WithFields(log.Fields{
		"kernel":  e.kernel.Name(),
		"elapsed": time.Since(start),
		"models":  modelCount(job),
		"errors":  len(evalErrs),
	}).Debug("evaluated job script")
	return job, evalErrs, err
}

func modelCount(j *Job) int {
	if j == nil {
		return 0
	}
	return len(j.Models)
}

func (e *Engine) evaluate(source string) (*Job, []EvalError) {
	job := &Job{}
	if strings.TrimSpace(source) == "" {
		return job, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, e.kernel, job)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return job, nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseZygomysError turns a zygomys error into an EvalError, pulling out a
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
