// Package commands implements the ksecret CLI commands.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// createdAtLayout formats secret creation timestamps for human output.
const createdAtLayout = "2006-01-02 15:04:05 MST"

// readSecretValue resolves the secret value for 'set': --stdin wins, then
// --value, then an interactive prompt. Trailing newlines are stripped so
// piped input round-trips cleanly.
func readSecretValue(cmd *cobra.Command, flagValue string, useStdin bool) (string, error) {
	if useStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read value from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(os.Stderr, "Enter secret value: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question on stderr and reads the answer from the
// command's input. Anything but y/yes declines.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// formatCreatedAt renders an optional creation timestamp for table output.
func formatCreatedAt(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(createdAtLayout)
}
