package main

import (
	"github.com/webstore-labs/checkout/internal/app"
	"github.com/webstore-labs/checkout/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
