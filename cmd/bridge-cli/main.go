package main

import "bridge-core/cmd/bridge-cli/cmd"

func main() {
	cmd.Execute()
}
