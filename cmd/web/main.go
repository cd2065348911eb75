// @title           Vending Hive API
// @version         1.0
// @description     Backend API for the Vending Hive vending operator platform.
// @contact.name    Vending Hive Support
// @contact.email   support@vendinghive.com
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "vendinghive_backend/internal/app"

func main() {
	app.Run()
}
