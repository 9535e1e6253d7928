package main

import "github.com/cmlabs-hris/ponto-backend-go/internal/cli"

func main() {
	cli.Execute()
}
