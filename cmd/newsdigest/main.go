package main

import "github.com/vietddude/newsdigest/internal/cli"

func main() {
	cli.Execute()
}
