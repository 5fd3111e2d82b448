/*
Copyright © 2025 Oleg Shokin

This file is the entry point for the ytm-grabber application.
It runs the root command defined in the cmd package.
*/
package main

import "github.com/oshokin/ytm-grabber/cmd"

func main() {
	cmd.Execute()
}
