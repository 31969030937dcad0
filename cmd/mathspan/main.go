// Command mathspan renders math expressions and reports where each
// subexpression ended up in the picture.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
