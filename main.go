package main

import (
	"github.com/yclin/bondwatch/internal/cli"
)

func main() {
	cli.Run()
}
