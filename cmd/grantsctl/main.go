package main

import "go.pilab.hu/grants/cmd/grantsctl/cmd"

func main() {
	cmd.Execute()
}
