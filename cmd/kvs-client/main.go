// Command kvs-client is a one-shot command-line client: it issues a
// single Set, Get, or Remove request against a kvs server and exits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bitcaskdb/kvs/internal/client"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: kvs-client <set|get|rm> [--addr IP:PORT] [args]")
	}

	op := args[0]
	fs := flag.NewFlagSet(op, flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:4000", "server address")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	rest := fs.Args()

	c, err := client.Connect(*addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", *addr, err)
	}
	defer c.Close()

	switch op {
	case "set":
		if len(rest) != 2 {
			return errors.New("usage: kvs-client set <key> <value>")
		}
		return c.Set(rest[0], rest[1])

	case "get":
		if len(rest) != 1 {
			return errors.New("usage: kvs-client get <key>")
		}
		value, found, err := c.Get(rest[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("Key not found")
			return nil
		}
		fmt.Println(value)
		return nil

	case "rm":
		if len(rest) != 1 {
			return errors.New("usage: kvs-client rm <key>")
		}
		if err := c.Remove(rest[0]); err != nil {
			if errors.Is(err, client.ErrKeyNotFound) {
				fmt.Fprintln(os.Stderr, "Key not found")
				os.Exit(1)
			}
			return err
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", op)
	}
}
