// Command mockapi runs a local stand-in for the Noosh API so load profiles
// can be exercised without touching a shared QA environment. Point nooshload
// at it with a custom environment whose baseURL is this server's address.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"nooshload/internal/mockapi"
)

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	latency := flag.Duration("latency", 0, "artificial per-request latency")
	flag.Parse()

	srv := mockapi.NewServer()
	srv.Latency = *latency

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("mock Noosh API listening on %s (latency: %v)\n", addr, *latency)

	server := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
