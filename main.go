package main

import (
	"github.com/Qarib2004/reddit-sub000/cmd/app"
)

func main() {
	app.GetApp().LetsGo()
}
