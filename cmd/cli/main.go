package main

import "github.com/Gsus07/tichat-push/cmd/cli/command"

func main() {
	command.Execute()
}
