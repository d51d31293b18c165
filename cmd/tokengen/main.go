// Command tokengen issues a signed bearer token for an operator. Tokens are
// minted out of band; the server only validates them.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/example/boutique/internal/config"
	"github.com/example/boutique/internal/utils"
)

func main() {
	subject := flag.String("subject", "", "token subject, usually an operator email")
	admin := flag.Bool("admin", false, "grant admin privileges")
	flag.Parse()

	if *subject == "" {
		log.Fatal("tokengen: -subject is required")
	}

	cfg := config.Load()

	token, err := utils.GenerateToken(cfg.JWTSecret, *subject, *admin, cfg.TokenExpires)
	if err != nil {
		log.Fatalf("tokengen: %v", err)
	}

	fmt.Println(token)
}
