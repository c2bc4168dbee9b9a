package main

import (
	"wtfSocial/auth"
	"wtfSocial/crud"
	"wtfSocial/http"
	"wtfSocial/ws"
)

// main is the app's entry point.
func main() {
	config, err := LoadConfig()
	must(err)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err = Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services. Order matters, the follow and visibility
	// services are dependencies of the ones configured after them.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithFollow(),
		crud.WithVisibility(),
		crud.WithUser(config.Pepper),
		crud.WithPost(),
		crud.WithReaction(),
		crud.WithMessage(),
	)
	must(err)

	tm := auth.NewTokenManager(config.JWTSecret, config.JWTTTL)

	// The hub fans incoming chat messages out to open websocket connections.
	hub := ws.NewHub()
	go hub.Run()

	// Set up a webserver and serve the app.
	server := http.NewServer(services, tm, hub)
	must(server.Run(config.Port))
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
