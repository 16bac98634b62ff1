package main

import "github.com/dsdecomp/nitrolink/cmd"

func main() {
	cmd.Execute()
}
