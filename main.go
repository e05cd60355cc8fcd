package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"captcha_solver/infrastructure/config"
	"captcha_solver/presentation/terminal"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	termInterface, err := terminal.NewTerminalInterface(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer termInterface.Close()

	if err := termInterface.Run(); err != nil {
		reportRunError(os.Stderr, err)
		return 1
	}
	return 0
}

// reportRunError - prints errors the solver has not already logged
func reportRunError(w io.Writer, err error) {
	if errors.Is(err, terminal.ErrSolveFailed) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
