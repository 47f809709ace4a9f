package main

import (
	"eco-route-service/internal/api"
	"eco-route-service/internal/config"
	"eco-route-service/internal/services"
	"log"
	"net/http"
	"time"
)

// main serves the optimizer contract with the in-process solver, for local
// runs of cmd/server against OPTIMIZER_URL.
func main() {
	config.LoadDotEnv()
	port := config.Get("PORT", "5001")

	router := api.NewOptimizerRouter(services.NewLocalOptimizer())

	log.Printf("Optimizer listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
