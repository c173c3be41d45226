package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/kickerhub/foosball-api/cmd/app"
)

// @title          Foosball API
// @description    CRUD API for recording foosball games: users, games, teams, players and goal events.
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
