package main

import "github.com/glucolog-org/coach/cmd/coach/command"

func main() {
	command.Execute()
}
