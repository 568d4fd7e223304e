// cmd/main.go
package main

import cmd "github.com/mwiater/opsbench/cmd/opsbench"

// main starts the opsbench CLI by delegating to the cobra root command
// defined in the opsbench package.
func main() {
	cmd.Execute()
}
