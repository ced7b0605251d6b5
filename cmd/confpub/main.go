package main

import "confpub/cmd/confpub/commands"

func main() {
	commands.Execute()
}
