package main

import "github.com/yndnr/myke/pkg/myke"

func main() {
	myke.Main(nil)
}
