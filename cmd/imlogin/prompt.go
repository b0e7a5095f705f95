package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/imdesk/imclient/pkg/credential"
)

// errAborted means the user ended input (EOF or ^C).
var errAborted = errors.New("input aborted")

// prompter reads credentials from the terminal.
type prompter struct {
	rl   *readline.Instance
	user string
}

func newPrompter(user string) (*prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Username: ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &prompter{rl: rl, user: user}, nil
}

// Stdout is the terminal writer that does not clobber the prompt.
func (p *prompter) Stdout() io.Writer {
	return p.rl.Stdout()
}

// Credentials prompts for a username (unless preset) and a hidden
// password, and seals the password right away.
func (p *prompter) Credentials() (*credential.Sealed, error) {
	user := p.user
	for user == "" {
		line, err := p.rl.Readline()
		if err != nil {
			return nil, errAborted
		}
		user = strings.TrimSpace(line)
	}

	pw, err := p.rl.ReadPassword("Password: ")
	if err != nil {
		return nil, errAborted
	}
	return credential.Seal(user, pw), nil
}

func (p *prompter) Close() error {
	return p.rl.Close()
}
