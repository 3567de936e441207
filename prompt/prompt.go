package prompt

import (
	"errors"
	"strings"
)

var ErrNoAnswer = errors.New("no scripted answer left")

// Provider takes the decisions the user is in charge of
type Provider interface {
	// Confirm asks a yes/no question
	Confirm(question string) (bool, error)
	// Ask asks for freeform text
	Ask(question string) (string, error)
}

type reader interface {
	ReadLine(format string, a ...any) (string, error)
}

var (
	_ Provider = (*Terminal)(nil)
	_ Provider = (*Scripted)(nil)
)

// Terminal asks questions through the console
type Terminal struct {
	console reader
}

func NewTerminal(console reader) *Terminal {
	return &Terminal{console}
}

func (terminal *Terminal) Confirm(question string) (bool, error) {
	answer, err := terminal.console.ReadLine("%s (y/n):", question)
	if err != nil {
		return false, err
	}
	return yes(answer), nil
}

func (terminal *Terminal) Ask(question string) (string, error) {
	return terminal.console.ReadLine("%s:", question)
}

// Scripted replays a queue of answers, in order:
// confirmations are given as "y"/"n"
type Scripted struct {
	answers []string
	asked   []string
}

func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (scripted *Scripted) Confirm(question string) (bool, error) {
	answer, err := scripted.next(question)
	if err != nil {
		return false, err
	}
	return yes(answer), nil
}

func (scripted *Scripted) Ask(question string) (string, error) {
	return scripted.next(question)
}

// Asked returns the questions asked so far
func (scripted *Scripted) Asked() []string {
	return scripted.asked
}

// Left returns how many answers have not been consumed
func (scripted *Scripted) Left() int {
	return len(scripted.answers)
}

func (scripted *Scripted) next(question string) (string, error) {
	scripted.asked = append(scripted.asked, question)
	if len(scripted.answers) == 0 {
		return "", ErrNoAnswer
	}
	answer := scripted.answers[0]
	scripted.answers = scripted.answers[1:]
	return answer, nil
}

func yes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
