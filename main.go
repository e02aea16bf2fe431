package main

import "github.com/wisdomie/foodlens/cmd/foodlens"

func main() {
	foodlens.Execute()
}
