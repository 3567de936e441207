package anchor

import (
	"fmt"
	"strings"
)

// Lot is a named status line: on a terminal it is kept
// at the bottom of the output and rewritten in place
type Lot struct {
	window *Window
	name   string
	status string
}

func (lot *Lot) Printf(format string, a ...any) {
	lot.Print(fmt.Sprintf(format, a...))
}

func (lot *Lot) Print(status string) {
	lot.window.lock.Lock()
	defer lot.window.lock.Unlock()

	lot.window.clear()
	lot.status = status
	lot.window.current = lot
	if lot.window.tty {
		fmt.Fprint(lot.window.out, lot.render())
		return
	}
	fmt.Fprintln(lot.window.out, lot.render())
}

// Wipe removes the lot from the console without leaving a trace
func (lot *Lot) Wipe() {
	lot.window.lock.Lock()
	defer lot.window.lock.Unlock()

	lot.window.clear()
	lot.status = ""
	if lot.window.current == lot {
		lot.window.current = nil
	}
}

// Close prints the final status of the lot as a regular line
func (lot *Lot) Close(status ...string) {
	lot.window.lock.Lock()
	defer lot.window.lock.Unlock()

	lot.window.clear()
	lot.status = strings.Join(append([]string{"done"}, status...), ", ")
	if lot.window.current == lot {
		lot.window.current = nil
	}
	fmt.Fprintln(lot.window.out, lot.render())
	lot.window.redraw()
}

func (lot *Lot) render() string {
	return fmt.Sprintf("[%s] %s", lot.name, lot.status)
}
