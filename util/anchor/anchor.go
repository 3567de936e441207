package anchor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const timeFormat = "2006-01-02 15:04:05"

const Red = color.FgRed

type level string

const (
	levelDebug   level = "DEBUG"
	levelInfo    level = "INFO"
	levelWarning level = "WARNING"
	levelError   level = "ERROR"
)

// Window is the console the whole program writes to:
// time-stamped log lines, named status lots and prompts
type Window struct {
	lock    sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	color   *color.Color
	warn    *color.Color
	tty     bool
	verbose bool
	lots    map[string]*Lot
	current *Lot
}

func New(attribute color.Attribute) *Window {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return NewWithIO(os.Stdin, os.Stdout, attribute, tty)
}

// NewWithIO binds a window to arbitrary streams: colors and
// line rewriting are only used when tty is true
func NewWithIO(in io.Reader, out io.Writer, attribute color.Attribute, tty bool) *Window {
	window := &Window{
		out:   out,
		in:    bufio.NewReader(in),
		color: color.New(attribute),
		warn:  color.New(color.FgYellow),
		tty:   tty,
		lots:  make(map[string]*Lot),
	}
	if tty {
		window.color.EnableColor()
		window.warn.EnableColor()
	} else {
		window.color.DisableColor()
		window.warn.DisableColor()
	}
	return window
}

func (window *Window) SetVerbose(verbose bool) {
	window.lock.Lock()
	defer window.lock.Unlock()
	window.verbose = verbose
}

func (window *Window) Printf(format string, a ...any) {
	window.log(levelInfo, nil, format, a...)
}

func (window *Window) Warnf(format string, a ...any) {
	window.log(levelWarning, window.warn, format, a...)
}

// AnchorPrintf reports an error, highlighted with the window color
func (window *Window) AnchorPrintf(format string, a ...any) {
	window.log(levelError, window.color, format, a...)
}

func (window *Window) Debugf(format string, a ...any) {
	if !window.verbose {
		return
	}
	window.log(levelDebug, nil, format, a...)
}

// ReadLine prompts the user and returns the trimmed line typed in;
// a final line without newline is accepted, an empty stream is io.EOF
func (window *Window) ReadLine(format string, a ...any) (string, error) {
	window.lock.Lock()
	window.clear()
	fmt.Fprint(window.out, fmt.Sprintf(format, a...)+" ")
	window.lock.Unlock()

	line, err := window.in.ReadString('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return "", err
	}

	window.lock.Lock()
	window.redraw()
	window.lock.Unlock()
	return strings.TrimSpace(line), nil
}

func (window *Window) Lot(name string) *Lot {
	window.lock.Lock()
	defer window.lock.Unlock()
	if lot, ok := window.lots[name]; ok {
		return lot
	}
	lot := &Lot{window: window, name: name}
	window.lots[name] = lot
	return lot
}

func (window *Window) log(lvl level, c *color.Color, format string, a ...any) {
	window.lock.Lock()
	defer window.lock.Unlock()

	line := fmt.Sprintf("%s - %s - %s", time.Now().Format(timeFormat), lvl, fmt.Sprintf(format, a...))
	if c != nil {
		line = c.Sprint(line)
	}
	window.clear()
	fmt.Fprintln(window.out, line)
	window.redraw()
}

// clear wipes the status lot line, if any is displayed;
// callers must hold the lock
func (window *Window) clear() {
	if !window.tty || window.current == nil {
		return
	}
	cursor.StartOfLine()
	cursor.ClearLine()
}

// redraw prints back the status lot line after a log line;
// callers must hold the lock
func (window *Window) redraw() {
	if !window.tty || window.current == nil {
		return
	}
	fmt.Fprint(window.out, window.current.render())
}
