//go:build !tinygo

package main

import "touchdrive/internal/cli"

func main() {
	cli.Execute()
}
