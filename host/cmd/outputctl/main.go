package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"auxout/host/mcu"
	"auxout/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose = flag.Bool("verbose", false, "Print every line sent")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	conn := mcu.NewMCU()
	if err := conn.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Lines given as arguments are sent once, in order
	if flag.NArg() > 0 {
		for _, line := range flag.Args() {
			if err := send(conn, line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	fmt.Println("Enter G-code (M62-M68, M2), 'help' for shortcuts, 'quit' to exit:")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "quit", "exit", "q":
			return

		case "help", "?":
			printHelp()

		case "on", "off":
			if len(parts) != 2 {
				fmt.Println("usage: on|off <n>")
				continue
			}
			code := "M64"
			if parts[0] == "off" {
				code = "M65"
			}
			line = code + " P" + parts[1]
			fallthrough

		default:
			if err := send(conn, line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func send(conn *mcu.MCU, line string) error {
	if *verbose {
		fmt.Printf(">> %s\n", line)
	}
	info, err := conn.SendLine(line)
	for _, l := range info {
		fmt.Println(l)
	}
	if err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func printHelp() {
	fmt.Println("\nShortcuts:")
	fmt.Println("  on <n>         - Digital output n on (M64 P<n>)")
	fmt.Println("  off <n>        - Digital output n off (M65 P<n>)")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println("\nAnything else is sent as G-code, e.g. 'M68 E0 Q50'.")
	fmt.Println()
}
