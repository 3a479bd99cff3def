package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/types"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// credentialFlag holds the raw -a value. Only the email part is checked at
// parse time; the password may still be prompted for.
type credentialFlag struct {
	value string
	set   bool
}

func (f *credentialFlag) String() string {
	email, _, _ := strings.Cut(f.value, ":")
	return email
}

func (f *credentialFlag) Set(v string) error {
	email, _, _ := strings.Cut(v, ":")
	if !strings.Contains(email, "@") {
		return fmt.Errorf("expected <email>:<password>, got %q", v)
	}
	f.value, f.set = v, true
	return nil
}

func (f *credentialFlag) Type() string { return "credential" }

var _ pflag.Value = (*credentialFlag)(nil)

// PasswordPrompt asks for a secret without echoing it.
type PasswordPrompt func(prompt string) (string, error)

// terminalPrompt reads from the controlling terminal. Without one there is
// nobody to ask.
func terminalPrompt(out io.Writer) PasswordPrompt {
	return func(prompt string) (string, error) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", errors.New(errors.ErrUsage, "stdin is not a terminal")
		}
		fmt.Fprint(out, prompt)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrUsage, "cannot read password")
		}
		return string(pw), nil
	}
}

// parseCredential splits "email:password". A missing password is asked
// for through prompt.
func parseCredential(value string, prompt PasswordPrompt) (*types.Credential, error) {
	email, password, hasPassword := strings.Cut(value, ":")
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.Newf(errors.ErrUsage, "-a expects <email>:<password>, got %q", value)
	}
	if !hasPassword {
		pw, err := prompt(fmt.Sprintf("App Store password for %s: ", email))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrUsage, "-a given without a password and it could not be prompted for")
		}
		password = pw
	}
	if password == "" {
		return nil, errors.Newf(errors.ErrUsage, "empty App Store password for %s", email)
	}
	return &types.Credential{Email: email, Password: password}, nil
}
