package main

import "unitconv/internal/app"

func main() {
	app.Main()
}
