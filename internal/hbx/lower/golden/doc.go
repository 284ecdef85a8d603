// Package golden holds templates checked in next to the render functions
// hbx generated from them.
package golden

//go:generate go run github.com/kilianc/hbx/cmd/hbx -dir . -helpers shout
