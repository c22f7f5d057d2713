//go:build tinygo

package main

import (
	"touchdrive/app"
	"touchdrive/board"
)

func main() {
	app.Run(board.New())
}
