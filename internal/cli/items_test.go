package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func confirmWith(t *testing.T, input string) bool {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetErr(&bytes.Buffer{})
	ok, err := confirmOnTerminal(cmd, "Delete? [y/N] ")
	if err != nil {
		t.Fatalf("confirmOnTerminal: %v", err)
	}
	return ok
}

func TestConfirmOnTerminal_OnlyExplicitYesConfirms(t *testing.T) {
	for _, in := range []string{"y\n", "Y\n", "yes\n", "YES\n"} {
		if !confirmWith(t, in) {
			t.Fatalf("input %q should confirm", in)
		}
	}
	for _, in := range []string{"n\n", "no\n", "yeah\n", "q\n", "\n", ""} {
		if confirmWith(t, in) {
			t.Fatalf("input %q must decline", in)
		}
	}
}

func TestConfirmOnTerminal_PromptGoesToStderr(t *testing.T) {
	cmd := &cobra.Command{}
	var errBuf bytes.Buffer
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetErr(&errBuf)
	cmd.SetOut(&bytes.Buffer{})

	if _, err := confirmOnTerminal(cmd, "Delete item i1? [y/N] "); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(errBuf.String(), "Delete item i1?") {
		t.Fatalf("prompt missing from stderr: %q", errBuf.String())
	}
}
