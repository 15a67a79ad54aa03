package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// send marshals and writes one envelope.
func send(c *websocket.Conn, env map[string]interface{}) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "Player", "display name")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "name=" + url.QueryEscape(*name)}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV: %s", string(message))
		}
	}()

	fmt.Println("Commands:")
	fmt.Println("  create <game_type>        e.g. create counter")
	fmt.Println("  join <room_id>")
	fmt.Println("  ready | unready")
	fmt.Println("  action <name> [json]      e.g. action choose {\"move\":\"rock\"}")
	fmt.Println("  quit")

	lines := make(chan string)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			text, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimSpace(text)
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			env, quit := parseCommand(line)
			if quit {
				return
			}
			if env == nil {
				continue
			}
			if err := send(c, env); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %v", env)
		}
	}
}

func parseCommand(line string) (env map[string]interface{}, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}

	switch fields[0] {
	case "create":
		if len(fields) < 2 {
			log.Println("Usage: create <game_type>")
			return nil, false
		}
		return map[string]interface{}{"type": "create", "game_type": fields[1]}, false
	case "join":
		if len(fields) < 2 {
			log.Println("Usage: join <room_id>")
			return nil, false
		}
		return map[string]interface{}{"type": "join", "room_id": fields[1]}, false
	case "ready":
		return map[string]interface{}{"type": "ready", "ready": true}, false
	case "unready":
		return map[string]interface{}{"type": "ready", "ready": false}, false
	case "action":
		if len(fields) < 2 {
			log.Println("Usage: action <name> [json]")
			return nil, false
		}
		env := map[string]interface{}{"type": "action", "action": fields[1]}
		if len(fields) > 2 {
			var data json.RawMessage
			payload := strings.Join(fields[2:], " ")
			if err := json.Unmarshal([]byte(payload), &data); err != nil {
				log.Printf("Invalid action data: %v", err)
				return nil, false
			}
			env["data"] = data
		}
		return env, false
	case "quit", "q":
		return nil, true
	default:
		log.Printf("Unknown command %q", fields[0])
		return nil, false
	}
}
