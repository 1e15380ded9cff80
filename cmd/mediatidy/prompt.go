package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediatidy/internal/batch"
	"mediatidy/internal/config"
)

var errNotConfirmed = fmt.Errorf("%w: not confirmed", batch.ErrSkip)

// confirm asks before a command changes files. It passes without asking when
// --yes is set or prompts are disabled, and refuses on a non-interactive stdin.
func (c *commandContext) confirm(cmd *cobra.Command, cfg *config.Config, question string) error {
	if c.assumeYes() || !cfg.Prompts.Confirm {
		return nil
	}
	in := cmd.InOrStdin()
	if !isInteractive(in) {
		return batch.Wrap(batch.ErrConfiguration, "confirm", "stdin is not a terminal; pass --yes or set prompts.confirm = false", nil)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errNotConfirmed
	}
}

func isInteractive(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
