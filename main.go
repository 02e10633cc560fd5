// The main package for the scholartrend executable.
package main

import (
	"github.com/stromning/scholartrend/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
