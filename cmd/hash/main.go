// Command hash generates a bcrypt hash for the admin panel password. The
// output is meant to be placed in ORD_AUTH_ADMIN_PASSWORD_HASH so the plain
// password never appears in configuration.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/freshgreens/ordering-backend/internal/auth"
)

func main() {
	var password string
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			log.Fatalf("failed to read password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		log.Fatal("password must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	fmt.Println(hash)
}
