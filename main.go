package main

import (
	"github.com/alexiswl/gridss/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
