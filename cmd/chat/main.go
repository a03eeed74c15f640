package main

import "github.com/YisusLuligo/chat/internal/cli"

func main() {
	cli.Execute()
}
