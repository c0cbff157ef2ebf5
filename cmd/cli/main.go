package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

const defaultServerURL = "http://localhost:12213"

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Server URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Server URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	serverURL = strings.TrimSuffix(serverURL, "/")
	args := flag.Args()

	var err error
	switch args[0] {
	case "printer":
		err = runPrinter(serverURL, args[1:])
	case "detect":
		err = runDetect(serverURL)
	case "watch":
		err = runWatch(serverURL)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPrinter(serverURL string, args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("printer subcommand required")
	}

	switch args[0] {
	case "list":
		return listPrinters(serverURL)
	case "default":
		return showDefault(serverURL)
	case "caps":
		if len(args) < 2 {
			return fmt.Errorf("usage: printer caps <id>")
		}
		return showCapabilities(serverURL, args[1])
	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("usage: printer rename <id> <name>")
		}
		return renamePrinter(serverURL, args[1], strings.Join(args[2:], " "))
	default:
		return fmt.Errorf("unknown printer subcommand: %s", args[0])
	}
}

type printerInfo struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"`
}

func listPrinters(serverURL string) error {
	var resp struct {
		Printers []printerInfo `json:"printers"`
	}
	if err := getJSON(serverURL+"/printers", &resp); err != nil {
		return err
	}

	printPrinters(resp.Printers)
	return nil
}

func showDefault(serverURL string) error {
	var resp struct {
		Printer printerInfo `json:"printer"`
	}
	if err := getJSON(serverURL+"/printers/default", &resp); err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", resp.Printer.ID, displayName(resp.Printer))
	return nil
}

func showCapabilities(serverURL, id string) error {
	var resp struct {
		Capabilities struct {
			BinCount int      `json:"bin_count"`
			BinIDs   []uint16 `json:"bin_ids,omitempty"`
			BinNames []string `json:"bin_names,omitempty"`
		} `json:"capabilities"`
	}
	if err := getJSON(serverURL+"/printer/"+url.PathEscape(id)+"/capabilities", &resp); err != nil {
		return err
	}

	caps := resp.Capabilities
	if caps.BinCount == 0 {
		fmt.Println("No paper bins reported")
		return nil
	}

	fmt.Printf("Paper bins: %d\n", caps.BinCount)
	for i := 0; i < caps.BinCount; i++ {
		name := ""
		if i < len(caps.BinNames) {
			name = caps.BinNames[i]
		}
		if i < len(caps.BinIDs) {
			fmt.Printf("  [%d] %s\n", caps.BinIDs[i], name)
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func renamePrinter(serverURL, id, name string) error {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return err
	}

	resp, err := http.Post(serverURL+"/printer/"+url.PathEscape(id)+"/name",
		"application/json", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	fmt.Printf("Renamed %s to %q\n", id, name)
	return nil
}

func runDetect(serverURL string) error {
	resp, err := http.Post(serverURL+"/detect", "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	var result struct {
		Printers []printerInfo `json:"printers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printPrinters(result.Printers)
	return nil
}

func runWatch(serverURL string) error {
	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		conn.Close()
		os.Exit(0)
	}()

	fmt.Println("Watching for printer events (Ctrl-C to stop)...")
	for {
		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}

		switch msg.Event {
		case "printer_added":
			var p printerInfo
			if err := json.Unmarshal(msg.Data, &p); err == nil {
				fmt.Printf("+ %s: %s\n", p.ID, displayName(p))
			}
		case "printer_removed":
			var d struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(msg.Data, &d); err == nil {
				fmt.Printf("- %s\n", d.ID)
			}
		default:
			fmt.Printf("? %s\n", msg.Event)
		}
	}
}

// websocketURL converts the http(s) server URL to its ws(s) /ws endpoint.
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

func getJSON(url string, out interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// responseError extracts the server's error message from a non-200 reply.
func responseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func printPrinters(printers []printerInfo) {
	if len(printers) == 0 {
		fmt.Println("No printers found")
		return
	}

	fmt.Println("Printers:")
	for _, p := range printers {
		fmt.Printf("  %s: %s (%s)\n", p.ID, displayName(p), p.Source)
	}
}

func displayName(p printerInfo) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Description
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Printer Directory CLI

Usage:
  printdir-cli [flags] <command>

Flags:
  -s, -server <url>    Server URL (default: %s)

Commands:
  printer list
    List all discovered printers

  printer default
    Show the system default printer

  printer caps <id>
    Show paper bin capabilities for a printer

  printer rename <id> <name>
    Set a custom name for a printer

  detect
    Rescan all discovery sources

  watch
    Stream printer add/remove events

  help
    Show this help message

Examples:
  printdir-cli printer list
  printdir-cli printer caps 7f3b9c12-0d4e-4f7a-9b1e-2c8d5e6f7a8b
  printdir-cli printer rename 7f3b9c12-0d4e-4f7a-9b1e-2c8d5e6f7a8b "Front Desk"
  printdir-cli -s http://localhost:12213 watch

`, defaultServerURL)
}
