package main

import "itunes2storage/cmd"

func main() {
	cmd.Execute()
}
