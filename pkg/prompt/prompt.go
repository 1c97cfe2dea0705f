package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrClosed = errors.New("prompt closed")

type Asker interface {
	Ask(question string) (string, error)
}

// Confirm asks question and accepts only a single "y" or "Y".
// End of input counts as a refusal.
func Confirm(a Asker, question string) (bool, error) {
	answer, err := a.Ask(question + " (y/N) ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

func IsYes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

type Console struct {
	in     *bufio.Reader
	closer io.Closer
	out    io.Writer
	closed bool
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
	if rc, ok := in.(io.Closer); ok {
		c.closer = rc
	}
	return c
}

func (c *Console) Ask(question string) (string, error) {
	if c.closed {
		return "", ErrClosed
	}
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close detaches from the input stream. Safe to call more than once.
func (c *Console) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Scripted replays fixed answers and records the questions asked.
type Scripted struct {
	Answers   []string
	Questions []string
}

func (s *Scripted) Ask(question string) (string, error) {
	s.Questions = append(s.Questions, question)
	if len(s.Answers) == 0 {
		return "", io.EOF
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	return a, nil
}

type AlwaysYes struct{}

func (AlwaysYes) Ask(string) (string, error) { return "y", nil }
