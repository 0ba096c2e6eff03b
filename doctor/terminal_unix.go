//go:build !windows

package doctor

import (
	"os"
	"os/exec"

	"golang.org/x/term"
)

// resetTerminal restores cooked mode in case a previous run left the
// terminal raw (the device picker switches it).
func resetTerminal(in *os.File) {
	if !term.IsTerminal(int(in.Fd())) {
		return
	}
	cmd := exec.Command("stty", "sane")
	cmd.Stdin = in
	cmd.Run()
}
