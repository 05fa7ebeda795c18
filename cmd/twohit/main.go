// cmd/twohit/main.go
package main

import (
	"twohit/internal/app"
	"twohit/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
