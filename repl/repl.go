// Package repl is an interactive shell over the converters. Each line is a
// command (as, bytes, parse, ...) or, failing that, a Lua chunk run with the
// intbridge module loaded.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"intbridge/errors"
	"intbridge/logging"
	"intbridge/marshal"
	rlua "intbridge/runtime/lua"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Version of the intbridge shell
const Version = "v0.1.0"

// REPL represents the Read-Eval-Print Loop
type REPL struct {
	eval           *Evaluator
	lua            *rlua.LuaRuntime
	display        *DisplayManager
	logger         logging.Logger
	input          io.Reader
	output         io.Writer
	prompt         string
	continuePrompt string
	historyFile    string
	historySize    int
	showWelcome    bool
	running        bool
}

// REPLConfig contains configuration for the REPL
type REPLConfig struct {
	Converter      *marshal.Converter
	Logger         logging.Logger
	Prompt         string // default "intbridge> "
	ContinuePrompt string // default "... "
	HistoryFile    string // default "/tmp/intbridge_history"
	HistorySize    int    // default 1000
	LuaTimeout     time.Duration
	ShowWelcome    bool
	EnableColors   bool
	Input          io.Reader // default os.Stdin
	Output         io.Writer // default os.Stdout
}

// NewREPLWithConfig creates a REPL and its Lua runtime
func NewREPLWithConfig(config REPLConfig) (*REPL, error) {
	if config.Converter == nil {
		config.Converter = marshal.Default()
	}
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}
	if config.Prompt == "" {
		config.Prompt = "intbridge> "
	}
	if config.ContinuePrompt == "" {
		config.ContinuePrompt = "... "
	}
	if config.HistoryFile == "" {
		config.HistoryFile = "/tmp/intbridge_history"
	}
	if config.HistorySize == 0 {
		config.HistorySize = 1000
	}
	if config.Input == nil {
		config.Input = os.Stdin
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	opts := []rlua.Option{
		rlua.WithConverter(config.Converter),
		rlua.WithOutput(config.Output),
		rlua.WithLogger(config.Logger),
	}
	if config.LuaTimeout > 0 {
		opts = append(opts, rlua.WithTimeout(config.LuaTimeout))
	}
	lr := rlua.NewLuaRuntime(opts...)
	if err := lr.Initialize(); err != nil {
		return nil, errors.WrapError(err, errors.KindSystem, errors.CodeNotInitialized, "failed to initialize lua runtime")
	}

	return &REPL{
		eval:           NewEvaluator(config.Converter, lr, config.Logger),
		lua:            lr,
		display:        NewDisplayManager(config.Output, config.EnableColors),
		logger:         config.Logger.WithComponent("repl"),
		input:          config.Input,
		output:         config.Output,
		prompt:         config.Prompt,
		continuePrompt: config.ContinuePrompt,
		historyFile:    config.HistoryFile,
		historySize:    config.HistorySize,
		showWelcome:    config.ShowWelcome,
	}, nil
}

// Evaluator returns the command evaluator
func (r *REPL) Evaluator() *Evaluator {
	return r.eval
}

// Close releases the Lua runtime
func (r *REPL) Close() error {
	return r.lua.Cleanup()
}

// isInteractive checks if the input is a terminal
func (r *REPL) isInteractive() bool {
	f, ok := r.input.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run starts the REPL loop
func (r *REPL) Run() error {
	r.running = true
	defer func() { _ = r.Close() }()

	if r.isInteractive() {
		if r.showWelcome {
			r.display.ShowWelcome(string(r.eval.Table().Profile))
		}
		return r.runInteractive()
	}
	return r.runPiped()
}

// runInteractive runs the REPL with readline history and completion
func (r *REPL) runInteractive() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt,
		HistoryFile:     r.historyFile,
		HistoryLimit:    r.historySize,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		AutoComplete:    NewCompleter(r.eval),
	})
	if err != nil {
		return errors.NewSystemError("READLINE_INIT_FAILED", fmt.Sprintf("failed to initialize readline: %v", err))
	}
	defer func() { _ = rl.Close() }()

	buffer := NewMultiLineBuffer()
	for r.running {
		if buffer.IsActive() {
			rl.SetPrompt(r.continuePrompt)
		} else {
			rl.SetPrompt(r.prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 && !buffer.IsActive() {
					break
				}
				buffer.Clear()
				continue
			}
			if err == io.EOF {
				break
			}
			return errors.NewSystemError("READ_ERROR", fmt.Sprintf("read error: %v", err))
		}

		input, complete := buffer.Feed(line)
		if complete {
			// errors are already shown; the session goes on
			_ = r.handle(input)
		}
	}
	return nil
}

// runPiped reads commands from a non-terminal input. The first failing
// command stops the run and its error is returned.
func (r *REPL) runPiped() error {
	scanner := bufio.NewScanner(r.input)
	buffer := NewMultiLineBuffer()
	for r.running && scanner.Scan() {
		input, complete := buffer.Feed(scanner.Text())
		if !complete {
			continue
		}
		if err := r.handle(input); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.NewSystemError("STDIN_READ_ERROR", fmt.Sprintf("error reading input: %v", err))
	}
	return nil
}

// handle runs one complete input and prints its outcome
func (r *REPL) handle(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	if strings.HasPrefix(trimmed, ":") {
		r.handleSpecialCommand(trimmed)
		return nil
	}

	result, err := r.eval.Execute(input)
	if err != nil {
		r.logger.Debug("command failed", logging.StringField("input", input), logging.ErrorField("error", err))
		r.display.ShowError(err)
		return err
	}
	r.display.ShowResult(result)
	return nil
}

func (r *REPL) handleSpecialCommand(input string) {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case ":quit", ":exit", ":q":
		r.running = false
	case ":help", ":h":
		r.display.ShowHelp(r.eval)
	case ":limits":
		out, _ := r.eval.Execute("limits")
		r.display.ShowResult(out)
	case ":profile":
		r.display.ShowResult(string(r.eval.Table().Profile))
	default:
		r.display.ShowWarning(fmt.Sprintf("unknown command %s, try :help", input))
	}
}

// ExecuteLine runs a single input non-interactively and returns its result
func (r *REPL) ExecuteLine(input string) (string, error) {
	return r.eval.Execute(input)
}
