package main

import (
	"fmt"
	"os"

	"files2prompt"
)

func main() {
	cli, err := files2prompt.InitCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
