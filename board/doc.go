// Package board provides the HAL for TinyGo targets: the microcontroller board
// on baremetal builds, and an in-memory stand-in when TinyGo targets an OS.
package board
