package main

import "agentforce/cmd"

func main() {
	cmd.Execute()
}
