package foodlens

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wisdomie/foodlens/internal/api"
)

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// prompter reads answers line by line from the command's stdin.
type prompter struct {
	out io.Writer
	src io.Reader
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	src := cmd.InOrStdin()
	return &prompter{out: cmd.OutOrStdout(), src: src, in: bufio.NewReader(src)}
}

// askSecret reads without echo when stdin is a terminal. Piped input is
// read as a plain line.
func (p *prompter) askSecret(label string) (string, error) {
	f, ok := p.src.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.ask(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// userError turns an API failure into the message the user should see.
// Anything else keeps its detail.
func userError(err error, fallback string) error {
	var apiErr *api.Error
	var validationErr *api.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr), errors.As(err, &validationErr), api.IsTransport(err):
		return errors.New(api.UserMessage(err, fallback))
	default:
		return err
	}
}
