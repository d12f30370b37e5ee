package main

import "opecbrain/cli"

func main() {
	cli.Execute()
}
