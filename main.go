package main

import "github.com/arvglez/storefront/cmd"

func main() {
	cmd.Start()
}
