package main

import "ticker-drift-alerts/internal/cli"

func main() {
	cli.Execute()
}
