package main

import "github.com/diogo/wikichat/internal/commands"

func main() {
	commands.Execute()
}
