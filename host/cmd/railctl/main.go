package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"vccrail/host/railctl"
	"vccrail/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	rail    = flag.String("rail", "vcc_power_ctrl", "Ext-power rail name")
	timeout = flag.Duration("timeout", railctl.DefaultTimeout, "Response timeout")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [enable|disable|toggle|get]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Without a command, railctl starts an interactive prompt.")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	client := railctl.NewClient(port, *timeout)

	if flag.NArg() > 0 {
		if err := run(client, flag.Arg(0), *rail); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			port.Close()
			os.Exit(1)
		}
		return
	}

	interactive(client)
}

func interactive(client *railctl.Client) {
	fmt.Printf("Connected to %s (type 'help' for available commands, 'quit' to exit)\n", *device)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		name := *rail
		if len(parts) > 1 {
			name = parts[1]
		}

		switch parts[0] {
		case "quit", "exit", "q":
			return
		case "help", "?":
			printHelp()
		default:
			if err := run(client, parts[0], name); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}

func run(client *railctl.Client, cmd, name string) error {
	ctx := context.Background()
	start := time.Now()

	var (
		on  bool
		err error
	)
	switch cmd {
	case "enable", "on":
		on, err = client.Enable(ctx, name)
	case "disable", "off":
		on, err = client.Disable(ctx, name)
	case "toggle":
		on, err = client.Toggle(ctx, name)
	case "get", "status":
		on, err = client.Get(ctx, name)
	default:
		return fmt.Errorf("unknown command %q (type 'help' for available commands)", cmd)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", cmd, name, err)
	}

	state := "off"
	if on {
		state = "on"
	}
	fmt.Printf("%s: %s (%v)\n", name, state, time.Since(start).Round(time.Millisecond))
	return nil
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  enable [rail]  - Power the rail (waits for the settle delay)")
	fmt.Println("  disable [rail] - Remove power from the rail")
	fmt.Println("  toggle [rail]  - Flip the rail")
	fmt.Println("  get [rail]     - Show the rail state")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println()
}
