package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"quicknotes/internal/server"
	"quicknotes/internal/server/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	dsn := os.Getenv("DSN")
	if dsn == "" {
		log.Fatal("DSN is required (e.g. user:pass@tcp(localhost:3306)/quicknotes?parseTime=true)")
	}
	st, err := store.OpenMySQL(dsn)
	if err != nil {
		log.Fatal("DB connection error:", err)
	}
	defer st.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	r := server.NewRouter(st, []byte(secret))

	log.Println("Server running on http://localhost:" + port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
