package main

import (
	"github.com/rakapradana/storefront/cmd"
)

func main() {
	cmd.Start()
}
