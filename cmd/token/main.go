// token emite un JWT firmado con JWT_SECRET para pruebas locales de la API.
//
// Uso: go run ./cmd/token -user u-1 -role operator
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stockledger-api/pkg/config"
	"github.com/jhoicas/stockledger-api/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-user", "user_id del token")
	role := flag.String("role", jwt.RoleOperator, "admin | operator | viewer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
