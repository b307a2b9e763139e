package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// hashpw prints a bcrypt hash for the users section of the gateway config.
// The password is read from stdin so it does not end up in shell history.
func main() {
	var cost int

	flag.IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		panic(fmt.Sprintf("read password: %v", err))
	}

	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		panic("empty password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		panic(err)
	}

	fmt.Println(string(hash))
}
