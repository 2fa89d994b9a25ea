/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command ferron-passwd prompts twice for a password (or generates one),
// hashes it with bcrypt, and prints a `user:hash` entry suitable for
// pasting into a basic-auth configuration block.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/ferronweb/ferron/password"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	user := flag.String("u", "", "user name for the emitted entry")
	generate := flag.Bool("g", false, "generate a random password instead of prompting")
	length := flag.Int("n", 20, "length of the generated password (with -g)")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "ferron-passwd: -u <user> is required")
		os.Exit(1)
	}

	var pw string
	if *generate {
		pw = password.Generate(*length)
		fmt.Fprintf(os.Stderr, "generated password: %s\n", pw)
	} else {
		first, err := readPassword("Password: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "ferron-passwd:", err)
			os.Exit(1)
		}
		second, err := readPassword("Confirm password: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "ferron-passwd:", err)
			os.Exit(1)
		}
		if !bytes.Equal([]byte(first), []byte(second)) {
			fmt.Fprintln(os.Stderr, "ferron-passwd: passwords do not match")
			os.Exit(1)
		}
		pw = first
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ferron-passwd:", err)
		os.Exit(1)
	}

	fmt.Printf("%s:%s\n", *user, hash)
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// stdin isn't a TTY (piped input, e.g. in a test harness): fall back
	// to a plain line read rather than failing outright.
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return bytes.NewBufferString(line).String(), nil
}
