//go:build windows

package doctor

import "os"

func resetTerminal(*os.File) {}
