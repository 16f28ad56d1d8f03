package main

import "github.com/frahmantamala/beacon/cmd"

func main() {
	cmd.Execute()
}
