package main

import (
	"github.com/modrunio/modrun/cmd/modrun/cmd"
)

func main() {
	cmd.Execute()
}
