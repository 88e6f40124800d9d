package main

import "wildwise/cmd"

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	cmd.SetVersionInfo(Version, License)
	cmd.Execute()
}
