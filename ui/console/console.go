// Package console handles the writing of colored, synced output to the
// terminal, so that log lines and status lines don't garble each other.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/selenv/selenv/lib/consts"
)

// Console enables synced writing to stdout and stderr.
type Console struct {
	IsTTY          bool
	outMx          *sync.Mutex
	Stdout, Stderr OSFileW
	Stdin          OSFileR
	stdout, stderr *consoleWriter
	theme          *theme
	signalNotify   func(chan<- os.Signal, ...os.Signal)
	signalStop     func(chan<- os.Signal)
	logger         *logrus.Logger
}

// New returns the pointer to a new Console value.
func New(
	stdout, stderr OSFileW, stdin OSFileR,
	colorize bool, termType string,
	signalNotify func(chan<- os.Signal, ...os.Signal),
	signalStop func(chan<- os.Signal),
) *Console {
	outMx := &sync.Mutex{}
	outCW := newConsoleWriter(stdout, outMx, termType)
	errCW := newConsoleWriter(stderr, outMx, termType)
	isTTY := outCW.isTTY && errCW.isTTY

	// Default logger without any formatting
	logger := &logrus.Logger{
		Out:       stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	var th *theme
	// Only enable themes and a fancy logger if we're in a TTY
	if isTTY && colorize {
		th = &theme{
			foreground: newColor(color.FgCyan),
			pass:       newColor(color.FgGreen, color.Bold),
			fail:       newColor(color.FgRed, color.Bold),
			warn:       newColor(color.FgYellow),
		}

		logger = &logrus.Logger{
			Out: stderr,
			Formatter: &logrus.TextFormatter{
				ForceColors:   true,
				DisableColors: false,
			},
			Hooks: make(logrus.LevelHooks),
			Level: logrus.InfoLevel,
		}
	}

	return &Console{
		IsTTY:        isTTY,
		outMx:        outMx,
		Stdout:       stdout,
		Stderr:       stderr,
		Stdin:        stdin,
		stdout:       outCW,
		stderr:       errCW,
		theme:        th,
		signalNotify: signalNotify,
		signalStop:   signalStop,
		logger:       logger,
	}
}

// ApplyTheme adds ANSI color escape sequences to s if themes are enabled;
// otherwise it returns s unchanged.
func (c *Console) ApplyTheme(s string) string {
	if c.colorized() {
		return c.theme.foreground.Sprint(s)
	}

	return s
}

// Pass renders s as a successful (green) status string.
func (c *Console) Pass(s string) string {
	if c.colorized() {
		return c.theme.pass.Sprint(s)
	}

	return s
}

// Fail renders s as a failed (red) status string.
func (c *Console) Fail(s string) string {
	if c.colorized() {
		return c.theme.fail.Sprint(s)
	}

	return s
}

// Warn renders s as a warning (yellow) status string.
func (c *Console) Warn(s string) string {
	if c.colorized() {
		return c.theme.warn.Sprint(s)
	}

	return s
}

// Banner returns the selenv ASCII art banner, optionally with ANSI color
// escape sequences if themes are enabled.
func (c *Console) Banner() string {
	return c.ApplyTheme(consts.Banner())
}

// GetLogger returns the preconfigured plain-text logger. It will be configured
// to output colors if themes are enabled.
func (c *Console) GetLogger() *logrus.Logger {
	return c.logger
}

// SetLogger overrides the preconfigured logger.
func (c *Console) SetLogger(l *logrus.Logger) {
	c.logger = l
}

// Print writes s to stdout.
func (c *Console) Print(s string) {
	if _, err := fmt.Fprint(c.stdout, s); err != nil {
		c.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

// Printf writes s to stdout, formatted with optional arguments.
func (c *Console) Printf(s string, a ...interface{}) {
	if _, err := fmt.Fprintf(c.stdout, s, a...); err != nil {
		c.logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

// PrintYAML marshals v to YAML, and writes the result to stdout. It returns an
// error if marshalling fails.
func (c *Console) PrintYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal YAML: %w", err)
	}
	c.Print(string(data))
	return nil
}

// TermWidth returns the terminal window width in characters. If the window size
// lookup fails, or if we're not running in a TTY (interactive terminal), the
// default value of 80 will be returned. err will be non-nil if the lookup fails.
func (c *Console) TermWidth() (int, error) {
	if !c.IsTTY {
		return defaultTermWidth, nil
	}

	width, _, err := term.GetSize(int(c.Stdout.Fd()))
	if !(width > 0) || err != nil {
		return defaultTermWidth, err
	}

	return width, nil
}

func (c *Console) colorized() bool {
	return c.theme != nil
}

// OSFile is a subset of the functionality implemented by os.File.
type OSFile interface {
	Fd() uintptr
}

// OSFileW is the writer variant of OSFile, typically representing os.Stdout and
// os.Stderr.
type OSFileW interface {
	io.Writer
	OSFile
}

// OSFileR is the reader variant of OSFile, typically representing os.Stdin.
type OSFileR interface {
	io.Reader
	OSFile
}

// theme is a collection of colors supported by the console output.
type theme struct {
	foreground *color.Color
	pass       *color.Color
	fail       *color.Color
	warn       *color.Color
}

// A writer that syncs writes with a mutex so that concurrent log lines and
// status output don't interleave mid-line.
type consoleWriter struct {
	OSFileW
	isTTY bool
	mutex *sync.Mutex
}

func newConsoleWriter(out OSFileW, mx *sync.Mutex, termType string) *consoleWriter {
	isTTY := termType != "dumb" && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))
	return &consoleWriter{out, isTTY, mx}
}

func (w *consoleWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	n, err = w.OSFileW.Write(p)
	w.mutex.Unlock()
	return n, err
}

// newColor returns the requested color with the given attributes.
func newColor(attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	c.EnableColor()
	return c
}
