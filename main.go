package main

import "senseact/cmd"

func main() {
	cmd.Execute()
}
