//go:build !sdl2

package main

import "github.com/urfave/cli"

// runSDL2 is nil in builds without the sdl2 tag; see main_sdl2.go for the
// real implementation.
var runSDL2 func(*cli.Context) error
