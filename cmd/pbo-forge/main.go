package main

import "github.com/oshokin/pbo-forge/cmd/pbo-forge/cmd"

func main() {
	cmd.Execute()
}
