package main

import (
	"github.com/c9s/pythia/pkg/cmd"
)

func main() {
	cmd.Execute()
}
