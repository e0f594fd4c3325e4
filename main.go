package main

import "github.com/iksnae/dexcom-tools/cmd"

func main() {
	cmd.Execute()
}
