package main

import (
	"github.com/glucolog-org/coach/api"
)

func main() {
	api.MainLoop()
}
