package main

import (
	"os"

	"github.com/gaborage/sqldao/internal/commands"
)

var version = "dev" // Will be set during build

func main() {
	os.Exit(commands.Execute(commands.NewRootCommand(version), os.Stderr))
}
