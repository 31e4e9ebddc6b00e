package main

import "github.com/vibast-solutions/ms-go-relay-keys/cmd"

func main() {
	cmd.Execute()
}
