package main

import "github.com/saltyorg/nix-options-doc/cmd"

func main() {
	cmd.Execute()
}
