package main

import (
	"os"

	_ "heating_card/docs"
)

// @title                      Heating Card API
// @version                    1.0
// @description                Live heating room cards for Home Assistant climate entities.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
