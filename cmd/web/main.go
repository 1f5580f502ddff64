package main

import "grapher_backend/internal/app"

func main() {
	app.Run()
}
