// Command hash-generator produces the bcrypt hash expected in
// SCHEMAREG_AUTH_ADMIN_PASSWORD_HASH from a plaintext admin password.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-cost N] <password>\n", os.Args[0])
		os.Exit(2)
	}

	hash, err := auth.HashPassword(flag.Arg(0), *cost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
