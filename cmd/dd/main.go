// Package main provides dd, a dependency-aware task tracker built on a
// directed acyclic task graph.
package main

import (
	"os"

	"github.com/dandori/dandori/internal/cli"
	"github.com/dandori/dandori/internal/config"
)

func main() {
	env := config.EnvMap(os.Environ())

	os.Exit(cli.Run(os.Args[1:], env, os.Stdout, os.Stderr))
}
